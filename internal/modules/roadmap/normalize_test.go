package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

func TestNormalizeDefaultsAndLocalIDs(t *testing.T) {
	doc, err := Normalize(logger.Nop(), `{"name":" Plan ","description":"d","items":[
		{"title":"Root","item_type":"course","semester":1},
		{"id":7,"title":"Child","item_type":"SKILL","semester":"2","parent_id":1,"level":1,"order":3,"is_important":true}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, "Plan", doc.Name)
	assert.Equal(t, "d", doc.Description)
	require.Len(t, doc.Records, 2)

	root := doc.Records[0]
	assert.Equal(t, LocalID(1), root.LocalID)
	assert.Nil(t, root.ParentRef)
	assert.Equal(t, types.ItemCourse, root.ItemType)
	assert.Equal(t, 0, root.Level)
	assert.Equal(t, 0, root.Order)
	assert.False(t, root.IsLeaf)
	assert.False(t, root.IsSemesterBreak)

	child := doc.Records[1]
	assert.Equal(t, LocalID(7), child.LocalID)
	require.NotNil(t, child.ParentRef)
	assert.Equal(t, LocalID(1), *child.ParentRef)
	assert.Equal(t, types.ItemSkill, child.ItemType)
	assert.Equal(t, 2, child.Semester)
	assert.Equal(t, 3, child.Order)
	assert.True(t, child.IsImportant)
	assert.Empty(t, doc.Corrections)
}

func TestNormalizeSemesterBreakType(t *testing.T) {
	doc, err := Normalize(logger.Nop(), `{"name":"X","items":[
		{"title":"Break","item_type":"SEMESTER_BREAK","semester":3,"is_semester_break":true},
		{"title":"Gap","item_type":"semester_break","semester":4,"is_semester_break":false}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, types.ItemCourse, doc.Records[0].ItemType)
	assert.True(t, doc.Records[0].IsSemesterBreak)
	assert.Equal(t, types.ItemCourse, doc.Records[1].ItemType)
	assert.False(t, doc.Records[1].IsSemesterBreak)
	require.Len(t, doc.Corrections, 2)
	assert.Equal(t, "item_type", doc.Corrections[0].Field)
}

func TestNormalizeUnknownTypeDefaultsToCourse(t *testing.T) {
	doc, err := Normalize(logger.Nop(), `{"name":"X","items":[{"title":"Hackathon","item_type":"EVENT","semester":1},{"title":"None","semester":1}]}`)
	require.NoError(t, err)
	assert.Equal(t, types.ItemCourse, doc.Records[0].ItemType)
	assert.Equal(t, types.ItemCourse, doc.Records[1].ItemType)
	assert.Len(t, doc.Corrections, 2)
}

func TestNormalizeMissingSemesterFailsBatch(t *testing.T) {
	for _, items := range []string{
		`[{"title":"Ok","semester":1},{"title":"Broken","semester":null}]`,
		`[{"title":"Ok","semester":1},{"title":"Broken"}]`,
	} {
		_, err := Normalize(logger.Nop(), `{"name":"X","items":`+items+`}`)
		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "Semester must not be null for item: Broken")
	}

	_, err := Normalize(logger.Nop(), `{"name":"X","items":[{"title":"Odd","semester":"spring"}]}`)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeTopSkills(t *testing.T) {
	doc, err := Normalize(logger.Nop(), `{"name":"X","items":[
		{"title":"Goal","item_type":"CAREER","semester":6,"is_leaf":true,"is_career_goal":true,
		 "top_skills":[{"skill":"Python","score":95},{"skill":"SQL","score":80.0}]},
		{"title":"BadGoal","item_type":"CAREER","semester":6,"is_leaf":true,"is_career_goal":true,
		 "top_skills":[{"skill":"Python","score":120}]},
		{"title":"NotLeaf","item_type":"CAREER","semester":6,"is_leaf":false,"is_career_goal":true,
		 "top_skills":[{"skill":"Go","score":50}]},
		{"title":"Shape","item_type":"CAREER","semester":6,"is_leaf":true,"is_career_goal":true,
		 "top_skills":"Python, SQL"}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, []types.TopSkill{{Skill: "Python", Score: 95}, {Skill: "SQL", Score: 80}}, doc.Records[0].TopSkills)
	assert.Nil(t, doc.Records[1].TopSkills)
	assert.Nil(t, doc.Records[2].TopSkills)
	assert.Nil(t, doc.Records[3].TopSkills)

	fields := map[string]int{}
	for _, c := range doc.Corrections {
		fields[c.Field]++
	}
	assert.Equal(t, 3, fields["top_skills"])
}

func TestNormalizeEnvelope(t *testing.T) {
	doc, err := Normalize(logger.Nop(), `{"roadmap":{"name":"Wrapped","items":[{"title":"A","semester":1}]}}`)
	require.NoError(t, err)
	assert.Equal(t, "Wrapped", doc.Name)
	assert.Len(t, doc.Records, 1)

	// an empty envelope falls back to the top level
	doc, err = Normalize(logger.Nop(), `{"roadmap":{},"name":"Flat","items":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "Flat", doc.Name)
	assert.Empty(t, doc.Records)
}

func TestNormalizeStructureErrors(t *testing.T) {
	cases := []string{
		`[]`,
		`{"items":[]}`,
		`{"name":"X"}`,
		`{"name":"X","items":{"title":"A"}}`,
		`{"name":"X","items":["A"]}`,
		`{"name":"X","items":[{"semester":1}]}`,
	}
	for _, in := range cases {
		_, err := Normalize(logger.Nop(), in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
	_, err := Normalize(logger.Nop(), `{"name":`)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestNormalizeParentAndModuleCorrections(t *testing.T) {
	doc, err := Normalize(logger.Nop(), `{"name":"X","items":[
		{"title":"Self","item_type":"COURSE","semester":1,"parent_id":1,"level":1},
		{"title":"Text","item_type":"COURSE","semester":1,"parent_id":"one","level":1,"module_id":"abc"},
		{"title":"Linked","item_type":"MODULE","semester":1,"module_id":12,"level":-2}
	]}`)
	require.NoError(t, err)
	assert.Nil(t, doc.Records[0].ParentRef)
	assert.Nil(t, doc.Records[1].ParentRef)
	assert.Nil(t, doc.Records[1].ModuleID)
	require.NotNil(t, doc.Records[2].ModuleID)
	assert.Equal(t, uint(12), *doc.Records[2].ModuleID)
	assert.Equal(t, 0, doc.Records[2].Level)
	assert.Len(t, doc.Corrections, 4)
}
