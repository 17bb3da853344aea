package roadmap

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/unipilot-backend/internal/data/repos"
	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

// ParentPolicy decides what happens to an item whose declared parent cannot
// be matched by title.
type ParentPolicy string

const (
	// PolicyLenient attaches the item to the first persisted item one level up.
	PolicyLenient ParentPolicy = "lenient"
	// PolicyStrict rejects the whole batch.
	PolicyStrict ParentPolicy = "strict"
)

func ParseParentPolicy(raw string) (ParentPolicy, error) {
	switch ParentPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown parent match policy %q", raw)
}

type Ingester struct {
	items  repos.RoadmapItemRepo
	log    *logger.Logger
	policy ParentPolicy
}

func NewIngester(items repos.RoadmapItemRepo, baseLog *logger.Logger, policy ParentPolicy) *Ingester {
	if policy == "" {
		policy = PolicyLenient
	}
	return &Ingester{items: items, log: baseLog.With("component", "RoadmapIngester"), policy: policy}
}

type titleKey struct {
	level int
	title string
}

// Ingest persists recs as items of roadmapID and links each item to a real
// parent. It must run inside the caller's transaction; any error leaves the
// transaction to be rolled back.
//
// Parents are matched by the title of the record the generator pointed at,
// among persisted items exactly one level up. The lowest id wins ties.
func (g *Ingester) Ingest(dbc dbctx.Context, roadmapID uint, recs []Record) ([]*types.RoadmapItem, error) {
	if roadmapID == 0 {
		return nil, fmt.Errorf("roadmap id required")
	}

	byLocal := make(map[LocalID]*Record, len(recs))
	for i := range recs {
		if _, dup := byLocal[recs[i].LocalID]; !dup {
			byLocal[recs[i].LocalID] = &recs[i]
		}
	}

	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return recs[order[a]].Level < recs[order[b]].Level
	})

	var (
		created    = make([]*types.RoadmapItem, 0, len(recs))
		byTitle    = map[titleKey][]*types.RoadmapItem{}
		byLevel    = map[int][]*types.RoadmapItem{}
		unresolved []int
		itemOf     = make([]*types.RoadmapItem, len(recs))
	)

	for _, idx := range order {
		rec := &recs[idx]
		var parentID *types.ItemID
		if rec.Level > 0 && rec.ParentRef != nil {
			if p := matchParent(rec, byLocal, byTitle); p != nil {
				id := p.ID
				parentID = &id
			} else {
				unresolved = append(unresolved, idx)
			}
		}

		item, err := toItem(roadmapID, rec, parentID)
		if err != nil {
			return nil, err
		}
		if err := g.items.Create(dbc, item); err != nil {
			return nil, fmt.Errorf("insert roadmap item %q: %w", rec.Title, err)
		}
		itemOf[idx] = item
		created = append(created, item)
		k := titleKey{level: item.Level, title: item.Title}
		byTitle[k] = append(byTitle[k], item)
		byLevel[item.Level] = append(byLevel[item.Level], item)
	}

	for _, idx := range unresolved {
		rec := &recs[idx]
		item := itemOf[idx]
		if item.ParentID != nil {
			continue
		}
		candidates := byLevel[rec.Level-1]
		if len(candidates) == 0 {
			if g.policy == PolicyStrict {
				return nil, fmt.Errorf("%w: no parent at level %d for item: %s", ErrValidation, rec.Level-1, rec.Title)
			}
			g.log.Warn("Roadmap item kept as root; no item one level up",
				"title", rec.Title, "level", rec.Level, "roadmap_id", roadmapID)
			continue
		}
		if g.policy == PolicyStrict {
			return nil, fmt.Errorf("%w: cannot match parent %d for item: %s", ErrValidation, *rec.ParentRef, rec.Title)
		}
		parent := candidates[0]
		id := parent.ID
		if err := g.items.UpdateParent(dbc, item.ID, &id); err != nil {
			return nil, fmt.Errorf("link roadmap item %q: %w", rec.Title, err)
		}
		item.ParentID = &id
		g.log.Warn("Roadmap item attached to fallback parent",
			"title", rec.Title,
			"reason", "declared parent not matched by title",
			"parent_title", parent.Title,
			"roadmap_id", roadmapID,
		)
	}

	return created, nil
}

func matchParent(rec *Record, byLocal map[LocalID]*Record, byTitle map[titleKey][]*types.RoadmapItem) *types.RoadmapItem {
	ref := byLocal[*rec.ParentRef]
	if ref == nil {
		return nil
	}
	candidates := byTitle[titleKey{level: rec.Level - 1, title: ref.Title}]
	if len(candidates) == 0 {
		return nil
	}
	// appended in insert order, so ids ascend
	return candidates[0]
}

func toItem(roadmapID uint, rec *Record, parentID *types.ItemID) (*types.RoadmapItem, error) {
	item := &types.RoadmapItem{
		RoadmapID:       roadmapID,
		ParentID:        parentID,
		ItemType:        rec.ItemType,
		Title:           rec.Title,
		Description:     rec.Description,
		Semester:        rec.Semester,
		IsSemesterBreak: rec.IsSemesterBreak,
		Order:           rec.Order,
		Level:           rec.Level,
		IsLeaf:          rec.IsLeaf,
		IsCareerGoal:    rec.IsCareerGoal,
		ModuleID:        rec.ModuleID,
		IsImportant:     rec.IsImportant,
	}
	if len(rec.TopSkills) > 0 && rec.IsCareerGoal && rec.IsLeaf {
		b, err := json.Marshal(rec.TopSkills)
		if err != nil {
			return nil, fmt.Errorf("encode top_skills for %q: %w", rec.Title, err)
		}
		item.TopSkills = datatypes.JSON(b)
	}
	return item, nil
}
