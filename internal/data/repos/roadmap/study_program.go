package roadmap

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type StudyProgramRepo interface {
	Create(dbc dbctx.Context, row *types.StudyProgram) error
	GetByID(dbc dbctx.Context, id uint) (*types.StudyProgram, error)
}

type studyProgramRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyProgramRepo(db *gorm.DB, baseLog *logger.Logger) StudyProgramRepo {
	return &studyProgramRepo{db: db, log: baseLog.With("repo", "StudyProgramRepo")}
}

func (r *studyProgramRepo) Create(dbc dbctx.Context, row *types.StudyProgram) error {
	if row == nil {
		return errors.New("study program row required")
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *studyProgramRepo) GetByID(dbc dbctx.Context, id uint) (*types.StudyProgram, error) {
	if id == 0 {
		return nil, nil
	}
	var out []*types.StudyProgram
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
