package roadmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

// LocalID is an id the generator invented for one of its own items. It only
// means something inside a single generator response and is never a
// persisted ItemID.
type LocalID int

// Record is one generator item after normalization.
type Record struct {
	// Position is the 0-based index in the generator's items array.
	Position  int
	LocalID   LocalID
	ParentRef *LocalID

	ItemType        types.ItemType
	Title           string
	Description     string
	Semester        int
	IsSemesterBreak bool
	Order           int
	Level           int
	IsLeaf          bool
	IsCareerGoal    bool
	ModuleID        *uint
	IsImportant     bool
	TopSkills       []types.TopSkill
}

// Correction is a recoverable fix applied to one item.
type Correction struct {
	Title  string
	Field  string
	Reason string
}

type Document struct {
	Name        string
	Description string
	Records     []Record
	Corrections []Correction
}

var (
	envelopePath = jp.MustParseString("$.roadmap")
	namePath     = jp.MustParseString("$.name")
	descPath     = jp.MustParseString("$.description")
	itemsPath    = jp.MustParseString("$.items")
)

// Normalize parses sanitized generator JSON into records. Unknown item types
// and malformed top_skills are corrected in place; a missing semester or a
// missing name/items fails the whole document.
func Normalize(log *logger.Logger, raw string) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: roadmap must be a JSON object", ErrValidation)
	}
	if env, ok := first(envelopePath, root).(map[string]any); ok && len(env) > 0 {
		root = env
	}

	name, _ := first(namePath, root).(string)
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: roadmap has no name", ErrValidation)
	}
	rawItems := first(itemsPath, root)
	if rawItems == nil {
		return nil, fmt.Errorf("%w: roadmap has no items", ErrValidation)
	}
	list, ok := rawItems.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: items must be a list", ErrValidation)
	}
	desc, _ := first(descPath, root).(string)

	out := &Document{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(desc),
		Records:     make([]Record, 0, len(list)),
	}
	for i, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrValidation, i+1)
		}
		rec, err := normalizeItem(i, m, &out.Corrections)
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, rec)
	}

	if log != nil {
		for _, c := range out.Corrections {
			log.Warn("Corrected generator item", "title", c.Title, "field", c.Field, "reason", c.Reason)
		}
	}
	return out, nil
}

func first(x jp.Expr, data any) any {
	if got := x.Get(data); len(got) > 0 {
		return got[0]
	}
	return nil
}

func normalizeItem(pos int, m map[string]any, fixes *[]Correction) (Record, error) {
	title := strings.TrimSpace(asString(m["title"]))
	if title == "" {
		return Record{}, fmt.Errorf("%w: item %d has no title", ErrValidation, pos+1)
	}
	note := func(field, reason string) {
		*fixes = append(*fixes, Correction{Title: title, Field: field, Reason: reason})
	}

	rec := Record{
		Position:        pos,
		LocalID:         LocalID(pos + 1),
		Title:           title,
		Description:     strings.TrimSpace(asString(m["description"])),
		IsSemesterBreak: asBool(m["is_semester_break"]),
		IsLeaf:          asBool(m["is_leaf"]),
		IsCareerGoal:    asBool(m["is_career_goal"]),
		IsImportant:     asBool(m["is_important"]),
	}
	if id, ok := asInt(m["id"]); ok {
		rec.LocalID = LocalID(id)
	}

	rawType := strings.ToUpper(strings.TrimSpace(asString(m["item_type"])))
	switch t, ok := types.ParseItemType(rawType); {
	case rawType == "SEMESTER_BREAK":
		rec.ItemType = types.ItemCourse
		note("item_type", "SEMESTER_BREAK is not an item type; stored as COURSE")
	case !ok:
		rec.ItemType = types.ItemCourse
		note("item_type", fmt.Sprintf("unknown item type %q; defaulting to COURSE", rawType))
	default:
		rec.ItemType = t
	}

	sem, present := m["semester"]
	if !present || sem == nil {
		return Record{}, fmt.Errorf("%w: Semester must not be null for item: %s", ErrValidation, title)
	}
	semester, ok := asInt(sem)
	if !ok {
		return Record{}, fmt.Errorf("%w: semester %v is not a number for item: %s", ErrValidation, sem, title)
	}
	rec.Semester = semester

	if v, ok := asInt(m["order"]); ok {
		rec.Order = v
	}
	if v, ok := asInt(m["level"]); ok {
		if v < 0 {
			note("level", "negative level; using 0")
			v = 0
		}
		rec.Level = v
	}

	if p := m["parent_id"]; p != nil {
		if v, ok := asInt(p); ok {
			ref := LocalID(v)
			if ref == rec.LocalID {
				note("parent_id", "item references itself; treated as root")
			} else {
				rec.ParentRef = &ref
			}
		} else {
			note("parent_id", fmt.Sprintf("parent_id %v is not an integer; ignored", p))
		}
	}

	if mid := m["module_id"]; mid != nil {
		if v, ok := asInt(mid); ok && v > 0 {
			id := uint(v)
			rec.ModuleID = &id
		} else {
			note("module_id", fmt.Sprintf("module_id %v is not a positive integer; dropped", mid))
		}
	}

	if ts, present := m["top_skills"]; present && ts != nil {
		switch {
		case !(rec.IsCareerGoal && rec.IsLeaf):
			note("top_skills", "only career-goal leaves carry top skills; dropped")
		default:
			skills, err := parseTopSkills(ts)
			if err != nil {
				note("top_skills", err.Error()+"; dropped")
			} else {
				rec.TopSkills = skills
			}
		}
	}
	return rec, nil
}

func parseTopSkills(v any) ([]types.TopSkill, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("top_skills is not a list")
	}
	out := make([]types.TopSkill, 0, len(list))
	for i, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("top_skills[%d] is not an object", i)
		}
		skill := strings.TrimSpace(asString(m["skill"]))
		if skill == "" {
			return nil, fmt.Errorf("top_skills[%d] has no skill", i)
		}
		score, ok := asInt(m["score"])
		if !ok || score < 0 || score > 100 {
			return nil, fmt.Errorf("top_skills[%d] score must be an integer 0-100", i)
		}
		out = append(out, types.TopSkill{Skill: skill, Score: score})
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// asInt accepts JSON integers, integral floats and numeric strings.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	case json.Number:
		i, err := t.Int64()
		return err == nil && i != 0
	case float64:
		return t != 0
	}
	return false
}
