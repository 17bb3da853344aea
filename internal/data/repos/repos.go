package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/unipilot-backend/internal/data/repos/roadmap"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type RoadmapRepo = roadmap.RoadmapRepo
type RoadmapItemRepo = roadmap.RoadmapItemRepo
type UserRoadmapItemRepo = roadmap.UserRoadmapItemRepo

type TopicFieldRepo = roadmap.TopicFieldRepo
type CareerNodeRepo = roadmap.CareerNodeRepo
type ModuleRepo = roadmap.ModuleRepo
type UserProfileRepo = roadmap.UserProfileRepo
type StudyProgramRepo = roadmap.StudyProgramRepo

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return roadmap.NewRoadmapRepo(db, baseLog)
}
func NewRoadmapItemRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapItemRepo {
	return roadmap.NewRoadmapItemRepo(db, baseLog)
}
func NewUserRoadmapItemRepo(db *gorm.DB, baseLog *logger.Logger) UserRoadmapItemRepo {
	return roadmap.NewUserRoadmapItemRepo(db, baseLog)
}

func NewTopicFieldRepo(db *gorm.DB, baseLog *logger.Logger) TopicFieldRepo {
	return roadmap.NewTopicFieldRepo(db, baseLog)
}
func NewCareerNodeRepo(db *gorm.DB, baseLog *logger.Logger) CareerNodeRepo {
	return roadmap.NewCareerNodeRepo(db, baseLog)
}
func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return roadmap.NewModuleRepo(db, baseLog)
}
func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return roadmap.NewUserProfileRepo(db, baseLog)
}
func NewStudyProgramRepo(db *gorm.DB, baseLog *logger.Logger) StudyProgramRepo {
	return roadmap.NewStudyProgramRepo(db, baseLog)
}
