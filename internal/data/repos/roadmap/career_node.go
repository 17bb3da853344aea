package roadmap

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type CareerNodeRepo interface {
	Create(dbc dbctx.Context, row *types.CareerTreeNode) error
	GetByID(dbc dbctx.Context, id uint) (*types.CareerTreeNode, error)

	// LinkTopicField sets the topic field of a job that has none yet. linked is
	// false when another writer got there first.
	LinkTopicField(dbc dbctx.Context, nodeID, topicFieldID uint) (linked bool, err error)
}

type careerNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCareerNodeRepo(db *gorm.DB, baseLog *logger.Logger) CareerNodeRepo {
	return &careerNodeRepo{db: db, log: baseLog.With("repo", "CareerNodeRepo")}
}

func (r *careerNodeRepo) Create(dbc dbctx.Context, row *types.CareerTreeNode) error {
	if row == nil {
		return errors.New("career node row required")
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *careerNodeRepo) GetByID(dbc dbctx.Context, id uint) (*types.CareerTreeNode, error) {
	if id == 0 {
		return nil, nil
	}
	var out []*types.CareerTreeNode
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *careerNodeRepo) LinkTopicField(dbc dbctx.Context, nodeID, topicFieldID uint) (bool, error) {
	if nodeID == 0 || topicFieldID == 0 {
		return false, nil
	}
	res := dbc.Conn(r.db).
		Model(&types.CareerTreeNode{}).
		Where("id = ? AND topic_field_id IS NULL", nodeID).
		Update("topic_field_id", topicFieldID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
