package roadmap

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type TopicFieldRepo interface {
	Create(dbc dbctx.Context, row *types.TopicField) error
	GetByID(dbc dbctx.Context, id uint) (*types.TopicField, error)
	DeleteByID(dbc dbctx.Context, id uint) error
}

type topicFieldRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicFieldRepo(db *gorm.DB, baseLog *logger.Logger) TopicFieldRepo {
	return &topicFieldRepo{db: db, log: baseLog.With("repo", "TopicFieldRepo")}
}

func (r *topicFieldRepo) Create(dbc dbctx.Context, row *types.TopicField) error {
	if row == nil {
		return errors.New("topic field row required")
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *topicFieldRepo) GetByID(dbc dbctx.Context, id uint) (*types.TopicField, error) {
	if id == 0 {
		return nil, nil
	}
	var out []*types.TopicField
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *topicFieldRepo) DeleteByID(dbc dbctx.Context, id uint) error {
	if id == 0 {
		return nil
	}
	return dbc.Conn(r.db).Where("id = ?", id).Delete(&types.TopicField{}).Error
}
