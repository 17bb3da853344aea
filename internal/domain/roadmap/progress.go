package roadmap

import "time"

// UserRoadmapItem tracks one student's completion of one roadmap item. Rows
// are removed together with their roadmap by the roadmap repo.
type UserRoadmapItem struct {
	UserID        uint       `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	RoadmapItemID ItemID     `gorm:"column:roadmap_item_id;primaryKey;autoIncrement:false" json:"roadmap_item_id"`
	Completed     bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at"`
	Notes         string     `gorm:"column:notes;type:text" json:"notes,omitempty"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserRoadmapItem) TableName() string { return "user_roadmap_item" }
