package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/unipilot-backend/internal/data/repos"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type Repos struct {
	Roadmap         repos.RoadmapRepo
	RoadmapItem     repos.RoadmapItemRepo
	UserRoadmapItem repos.UserRoadmapItemRepo

	TopicField   repos.TopicFieldRepo
	CareerNode   repos.CareerNodeRepo
	Module       repos.ModuleRepo
	UserProfile  repos.UserProfileRepo
	StudyProgram repos.StudyProgramRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Roadmap:         repos.NewRoadmapRepo(db, log),
		RoadmapItem:     repos.NewRoadmapItemRepo(db, log),
		UserRoadmapItem: repos.NewUserRoadmapItemRepo(db, log),
		TopicField:      repos.NewTopicFieldRepo(db, log),
		CareerNode:      repos.NewCareerNodeRepo(db, log),
		Module:          repos.NewModuleRepo(db, log),
		UserProfile:     repos.NewUserProfileRepo(db, log),
		StudyProgram:    repos.NewStudyProgramRepo(db, log),
	}
}
