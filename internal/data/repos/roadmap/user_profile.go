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

type UserProfileRepo interface {
	Upsert(dbc dbctx.Context, row *types.UserProfile) error
	GetByUserID(dbc dbctx.Context, userID uint) (*types.UserProfile, error)
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return &userProfileRepo{db: db, log: baseLog.With("repo", "UserProfileRepo")}
}

func (r *userProfileRepo) Upsert(dbc dbctx.Context, row *types.UserProfile) error {
	if row == nil || row.UserID == 0 {
		return errors.New("user profile requires user_id")
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.Conn(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"study_program_id", "current_semester", "skills", "updated_at"}),
	}).Create(row).Error
}

func (r *userProfileRepo) GetByUserID(dbc dbctx.Context, userID uint) (*types.UserProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	var out []*types.UserProfile
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
