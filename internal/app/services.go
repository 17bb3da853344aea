package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/unipilot-backend/internal/modules/roadmap"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type Services struct {
	Roadmap roadmap.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	policy, err := roadmap.ParseParentPolicy(cfg.ParentPolicy)
	if err != nil {
		return Services{}, fmt.Errorf("PARENT_MATCH_POLICY: %w", err)
	}
	svc := roadmap.NewService(roadmap.ServiceDeps{
		DB:        db,
		Log:       log,
		Generator: clients.Generator,
		Locker:    clients.Locker,
		Config: roadmap.Config{
			Model:           cfg.Generator.ModelRoadmap,
			Temperature:     cfg.Generator.Temperature,
			MaxOutputTokens: cfg.Generator.MaxOutputTokens,
			GenerateTimeout: cfg.GenerateTimeout,
			ParentPolicy:    policy,
		},
		Roadmaps:      repos.Roadmap,
		Items:         repos.RoadmapItem,
		TopicFields:   repos.TopicField,
		Jobs:          repos.CareerNode,
		StudyPrograms: repos.StudyProgram,
		Modules:       repos.Module,
		Profiles:      repos.UserProfile,
		Progress:      repos.UserRoadmapItem,
	})
	return Services{Roadmap: svc}, nil
}
