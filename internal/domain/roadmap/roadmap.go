package roadmap

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ItemID is the durable id of a persisted RoadmapItem. Ids invented by the
// generator never have this type.
type ItemID uint

type ItemType string

const (
	ItemCourse      ItemType = "COURSE"
	ItemModule      ItemType = "MODULE"
	ItemProject     ItemType = "PROJECT"
	ItemSkill       ItemType = "SKILL"
	ItemBook        ItemType = "BOOK"
	ItemCertificate ItemType = "CERTIFICATE"
	ItemInternship  ItemType = "INTERNSHIP"
	ItemBootcamp    ItemType = "BOOTCAMP"
	ItemCareer      ItemType = "CAREER"
)

var ItemTypes = []ItemType{
	ItemCourse, ItemModule, ItemProject, ItemSkill, ItemBook,
	ItemCertificate, ItemInternship, ItemBootcamp, ItemCareer,
}

func (t ItemType) Valid() bool {
	for _, v := range ItemTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseItemType uppercases raw; ok is false when the result is not an enum member.
func ParseItemType(raw string) (ItemType, bool) {
	t := ItemType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.Valid()
}

type TopSkill struct {
	Skill string `json:"skill"`
	Score int    `json:"score"`
}

type Roadmap struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TopicFieldID uint      `gorm:"column:topic_field_id;not null;uniqueIndex:idx_roadmap_topic_field" json:"topic_field_id"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	Description  string    `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Roadmap) TableName() string { return "roadmap" }

type RoadmapItem struct {
	ID        ItemID `gorm:"primaryKey;autoIncrement" json:"id"`
	RoadmapID uint   `gorm:"column:roadmap_id;not null;index:idx_roadmap_item_roadmap" json:"roadmap_id"`
	// nil only for roots
	ParentID        *ItemID        `gorm:"column:parent_id;index:idx_roadmap_item_parent" json:"parent_id"`
	ItemType        ItemType       `gorm:"column:item_type;size:32;not null" json:"item_type"`
	Title           string         `gorm:"column:title;size:255;not null" json:"title"`
	Description     string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Semester        int            `gorm:"column:semester;not null" json:"semester"`
	IsSemesterBreak bool           `gorm:"column:is_semester_break;not null;default:false" json:"is_semester_break"`
	Order           int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	Level           int            `gorm:"column:level;not null;default:0" json:"level"`
	IsLeaf          bool           `gorm:"column:is_leaf;not null;default:false" json:"is_leaf"`
	IsCareerGoal    bool           `gorm:"column:is_career_goal;not null;default:false" json:"is_career_goal"`
	ModuleID        *uint          `gorm:"column:module_id" json:"module_id"`
	IsImportant     bool           `gorm:"column:is_important;not null;default:false" json:"is_important"`
	TopSkills       datatypes.JSON `gorm:"column:top_skills" json:"-"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (RoadmapItem) TableName() string { return "roadmap_item" }

// Skills decodes TopSkills. A stored value that no longer decodes yields nil.
func (i *RoadmapItem) Skills() []TopSkill {
	if i == nil || len(i.TopSkills) == 0 {
		return nil
	}
	var out []TopSkill
	if err := json.Unmarshal(i.TopSkills, &out); err != nil {
		return nil
	}
	return out
}
