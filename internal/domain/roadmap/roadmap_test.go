package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestParseItemType(t *testing.T) {
	got, ok := ParseItemType(" skill ")
	assert.True(t, ok)
	assert.Equal(t, ItemSkill, got)

	got, ok = ParseItemType("semester_break")
	assert.False(t, ok)
	assert.Equal(t, ItemType("SEMESTER_BREAK"), got)
}

func TestSkillsDecoding(t *testing.T) {
	item := &RoadmapItem{TopSkills: datatypes.JSON(`[{"skill":"Go","score":90}]`)}
	assert.Equal(t, []TopSkill{{Skill: "Go", Score: 90}}, item.Skills())

	item.TopSkills = datatypes.JSON(`not json`)
	assert.Nil(t, item.Skills())

	assert.Nil(t, (&RoadmapItem{}).Skills())
}
