package roadmap

import (
	"errors"
	"hash/fnv"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type RoadmapRepo interface {
	Create(dbc dbctx.Context, row *types.Roadmap) error

	GetByID(dbc dbctx.Context, id uint) (*types.Roadmap, error)
	GetByTopicFieldID(dbc dbctx.Context, topicFieldID uint) (*types.Roadmap, error)

	// LockTarget serializes roadmap creation for one topic field until the
	// surrounding transaction ends. It is a no-op outside postgres.
	LockTarget(dbc dbctx.Context, topicFieldID uint) error

	FullDeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) Create(dbc dbctx.Context, row *types.Roadmap) error {
	if row == nil {
		return errors.New("roadmap row required")
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.Conn(r.db).Create(row).Error
}

func (r *roadmapRepo) GetByID(dbc dbctx.Context, id uint) (*types.Roadmap, error) {
	if id == 0 {
		return nil, nil
	}
	var out []*types.Roadmap
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *roadmapRepo) GetByTopicFieldID(dbc dbctx.Context, topicFieldID uint) (*types.Roadmap, error) {
	if topicFieldID == 0 {
		return nil, nil
	}
	var out []*types.Roadmap
	if err := dbc.Conn(r.db).
		Where("topic_field_id = ?", topicFieldID).
		Order("id ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *roadmapRepo) LockTarget(dbc dbctx.Context, topicFieldID uint) error {
	t := dbc.Conn(r.db)
	if t.Dialector == nil || t.Dialector.Name() != "postgres" {
		return nil
	}
	return t.Exec("SELECT pg_advisory_xact_lock(?)", advisoryKey("roadmap", topicFieldID)).Error
}

func advisoryKey(scope string, id uint) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope))
	return int64(h.Sum64()>>1) ^ int64(id)
}

// FullDeleteByIDs removes roadmaps together with their items and the progress
// rows pointing at those items.
func (r *roadmapRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	t := dbc.Conn(r.db)
	itemIDs := t.Model(&types.RoadmapItem{}).Select("id").Where("roadmap_id IN ?", ids)
	if err := t.Where("roadmap_item_id IN (?)", itemIDs).Delete(&types.UserRoadmapItem{}).Error; err != nil {
		return err
	}
	if err := t.Where("roadmap_id IN ?", ids).Delete(&types.RoadmapItem{}).Error; err != nil {
		return err
	}
	return t.Where("id IN ?", ids).Delete(&types.Roadmap{}).Error
}
