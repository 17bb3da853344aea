package roadmap

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type RoadmapItemRepo interface {
	Create(dbc dbctx.Context, row *types.RoadmapItem) error

	GetByID(dbc dbctx.Context, id types.ItemID) (*types.RoadmapItem, error)
	ListByRoadmapID(dbc dbctx.Context, roadmapID uint) ([]*types.RoadmapItem, error)
	ListByParentID(dbc dbctx.Context, parentID types.ItemID) ([]*types.RoadmapItem, error)
	CountByRoadmapID(dbc dbctx.Context, roadmapID uint) (int64, error)

	UpdateParent(dbc dbctx.Context, id types.ItemID, parentID *types.ItemID) error
}

type roadmapItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapItemRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapItemRepo {
	return &roadmapItemRepo{db: db, log: baseLog.With("repo", "RoadmapItemRepo")}
}

// Create inserts one row and fills in its id.
func (r *roadmapItemRepo) Create(dbc dbctx.Context, row *types.RoadmapItem) error {
	if row == nil {
		return errors.New("roadmap item row required")
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *roadmapItemRepo) GetByID(dbc dbctx.Context, id types.ItemID) (*types.RoadmapItem, error) {
	if id == 0 {
		return nil, nil
	}
	var out []*types.RoadmapItem
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *roadmapItemRepo) ListByRoadmapID(dbc dbctx.Context, roadmapID uint) ([]*types.RoadmapItem, error) {
	var out []*types.RoadmapItem
	if roadmapID == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("roadmap_id = ?", roadmapID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapItemRepo) ListByParentID(dbc dbctx.Context, parentID types.ItemID) ([]*types.RoadmapItem, error) {
	var out []*types.RoadmapItem
	if parentID == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roadmapItemRepo) CountByRoadmapID(dbc dbctx.Context, roadmapID uint) (int64, error) {
	var n int64
	if roadmapID == 0 {
		return 0, nil
	}
	err := dbc.Conn(r.db).Model(&types.RoadmapItem{}).Where("roadmap_id = ?", roadmapID).Count(&n).Error
	return n, err
}

func (r *roadmapItemRepo) UpdateParent(dbc dbctx.Context, id types.ItemID, parentID *types.ItemID) error {
	if id == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.RoadmapItem{}).
		Where("id = ?", id).
		Update("parent_id", parentID).Error
}
