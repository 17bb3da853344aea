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

type ModuleRepo interface {
	Create(dbc dbctx.Context, row *types.Module) error

	// ListAvailable returns the modules of a study program the user has not
	// completed yet, ordered by semester.
	ListAvailable(dbc dbctx.Context, studyProgramID, userID uint) ([]*types.Module, error)

	UpsertProgress(dbc dbctx.Context, row *types.UserModuleProgress) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, row *types.Module) error {
	if row == nil {
		return errors.New("module row required")
	}
	if row.ModuleType == "" {
		row.ModuleType = "REQUIRED"
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *moduleRepo) ListAvailable(dbc dbctx.Context, studyProgramID, userID uint) ([]*types.Module, error) {
	var out []*types.Module
	if studyProgramID == 0 {
		return out, nil
	}
	t := dbc.Conn(r.db)
	q := t.Where("study_program_id = ?", studyProgramID)
	if userID != 0 {
		done := t.Model(&types.UserModuleProgress{}).
			Select("module_id").
			Where("user_id = ? AND completed = ?", userID, true)
		q = q.Where("id NOT IN (?)", done)
	}
	if err := q.Order("semester ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleRepo) UpsertProgress(dbc dbctx.Context, row *types.UserModuleProgress) error {
	if row == nil || row.UserID == 0 || row.ModuleID == 0 {
		return errors.New("module progress requires user_id and module_id")
	}
	return dbc.Conn(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "grade", "completed_at"}),
	}).Create(row).Error
}
