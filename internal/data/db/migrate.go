package db

import (
	"fmt"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Catalog
		// =========================
		&types.TopicField{},
		&types.StudyProgram{},
		&types.Module{},
		&types.CareerTreeNode{},

		// =========================
		// Student
		// =========================
		&types.UserProfile{},
		&types.UserModuleProgress{},

		// =========================
		// Roadmaps
		// =========================
		&types.Roadmap{},
		&types.RoadmapItem{},
		&types.UserRoadmapItem{},
	)
}

// EnsureRoadmapIndexes adds the composite lookups used by ingestion and
// reconstruction. Safe to re-run.
func EnsureRoadmapIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_roadmap_item_roadmap_level",
			sql:  `CREATE INDEX IF NOT EXISTS idx_roadmap_item_roadmap_level ON roadmap_item (roadmap_id, level, id);`,
		},
		{
			name: "idx_user_roadmap_item_user",
			sql:  `CREATE INDEX IF NOT EXISTS idx_user_roadmap_item_user ON user_roadmap_item (user_id);`,
		},
		{
			name: "idx_user_module_progress_completed",
			sql:  `CREATE INDEX IF NOT EXISTS idx_user_module_progress_completed ON user_module_progress (user_id, completed);`,
		},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}
