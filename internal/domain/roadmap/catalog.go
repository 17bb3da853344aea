package roadmap

import "time"

type TopicField struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	Description  string    `gorm:"column:description;type:text" json:"description,omitempty"`
	SystemPrompt string    `gorm:"column:system_prompt;type:text" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (TopicField) TableName() string { return "topic_field" }

// CareerTreeNode is a node of the career tree; leaves are jobs.
type CareerTreeNode struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;size:255;not null" json:"name"`
	Description    string    `gorm:"column:description;type:text" json:"description,omitempty"`
	StudyProgramID uint      `gorm:"column:study_program_id;not null;index" json:"study_program_id"`
	TopicFieldID   *uint     `gorm:"column:topic_field_id;uniqueIndex:idx_career_node_topic_field" json:"topic_field_id"`
	IsLeaf         bool      `gorm:"column:is_leaf;not null;default:false" json:"is_leaf"`
	Level          int       `gorm:"column:level;not null;default:0" json:"level"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (CareerTreeNode) TableName() string { return "career_tree_node" }

type StudyProgram struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	UniversityID uint      `gorm:"column:university_id;index" json:"university_id"`
	DegreeType   string    `gorm:"column:degree_type;size:50" json:"degree_type,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (StudyProgram) TableName() string { return "study_program" }

type Module struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;size:255;not null" json:"name"`
	Description    string    `gorm:"column:description;type:text" json:"description,omitempty"`
	ModuleType     string    `gorm:"column:module_type;size:32;not null;default:'REQUIRED'" json:"type"` // REQUIRED|ELECTIVE
	StudyProgramID uint      `gorm:"column:study_program_id;not null;index" json:"study_program_id"`
	Semester       *int      `gorm:"column:semester" json:"semester"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (Module) TableName() string { return "module" }

type UserProfile struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	StudyProgramID  *uint     `gorm:"column:study_program_id" json:"study_program_id"`
	CurrentSemester *int      `gorm:"column:current_semester" json:"current_semester"`
	Skills          string    `gorm:"column:skills;type:text" json:"skills,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

type UserModuleProgress struct {
	UserID      uint       `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	ModuleID    uint       `gorm:"column:module_id;primaryKey;autoIncrement:false" json:"module_id"`
	Completed   bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	Grade       string     `gorm:"column:grade;size:10" json:"grade,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (UserModuleProgress) TableName() string { return "user_module_progress" }
