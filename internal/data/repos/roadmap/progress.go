package roadmap

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type UserRoadmapItemRepo interface {
	Upsert(dbc dbctx.Context, row *types.UserRoadmapItem) error
	ListByUserAndItemIDs(dbc dbctx.Context, userID uint, itemIDs []types.ItemID) ([]*types.UserRoadmapItem, error)
}

type userRoadmapItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRoadmapItemRepo(db *gorm.DB, baseLog *logger.Logger) UserRoadmapItemRepo {
	return &userRoadmapItemRepo{db: db, log: baseLog.With("repo", "UserRoadmapItemRepo")}
}

func (r *userRoadmapItemRepo) Upsert(dbc dbctx.Context, row *types.UserRoadmapItem) error {
	if row == nil || row.UserID == 0 || row.RoadmapItemID == 0 {
		return errors.New("roadmap progress requires user_id and roadmap_item_id")
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.Conn(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "roadmap_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "notes", "updated_at"}),
	}).Create(row).Error
}

func (r *userRoadmapItemRepo) ListByUserAndItemIDs(dbc dbctx.Context, userID uint, itemIDs []types.ItemID) ([]*types.UserRoadmapItem, error) {
	var out []*types.UserRoadmapItem
	if userID == 0 || len(itemIDs) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND roadmap_item_id IN ?", userID, itemIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
