package roadmap

import (
	"sort"

	types "github.com/yungbote/unipilot-backend/internal/domain"
)

// ItemView is the API shape of one persisted item.
type ItemView struct {
	ID              types.ItemID     `json:"id"`
	RoadmapID       uint             `json:"roadmap_id"`
	ParentID        *types.ItemID    `json:"parent_id"`
	ItemType        types.ItemType   `json:"item_type"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Semester        int              `json:"semester"`
	IsSemesterBreak bool             `json:"is_semester_break"`
	Order           int              `json:"order"`
	Level           int              `json:"level"`
	IsLeaf          bool             `json:"is_leaf"`
	IsCareerGoal    bool             `json:"is_career_goal"`
	ModuleID        *uint            `json:"module_id"`
	IsImportant     bool             `json:"is_important"`
	TopSkills       []types.TopSkill `json:"top_skills"`
}

type TreeNode struct {
	ItemView
	Children []*TreeNode `json:"children"`
}

func NewItemView(it *types.RoadmapItem) ItemView {
	return ItemView{
		ID:              it.ID,
		RoadmapID:       it.RoadmapID,
		ParentID:        it.ParentID,
		ItemType:        it.ItemType,
		Title:           it.Title,
		Description:     it.Description,
		Semester:        it.Semester,
		IsSemesterBreak: it.IsSemesterBreak,
		Order:           it.Order,
		Level:           it.Level,
		IsLeaf:          it.IsLeaf,
		IsCareerGoal:    it.IsCareerGoal,
		ModuleID:        it.ModuleID,
		IsImportant:     it.IsImportant,
		TopSkills:       it.Skills(),
	}
}

func ItemViews(items []*types.RoadmapItem) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, NewItemView(it))
		}
	}
	return out
}

// BuildTree nests items under their root. The root is the first
// parentless item by id; when every item has a parent, the item with the
// lowest level stands in. Returns nil for no items.
func BuildTree(items []*types.RoadmapItem) *TreeNode {
	return reconstruct(ItemViews(items), false).first()
}

// BuildForest is BuildTree for every root, ordered by id. Items whose parent
// is not in the set count as roots.
func BuildForest(items []*types.RoadmapItem) []*TreeNode {
	return reconstruct(ItemViews(items), true)
}

// Flatten lists the tree in pre-order without nesting.
func Flatten(root *TreeNode) []ItemView {
	var out []ItemView
	if root == nil {
		return out
	}
	stack := []*TreeNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.ItemView)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

type forest []*TreeNode

func (f forest) first() *TreeNode {
	if len(f) == 0 {
		return nil
	}
	return f[0]
}

// reconstruct builds nodes from an arena of views and a parent index derived
// once per call. It never recurses, so depth is unbounded.
func reconstruct(views []ItemView, all bool) forest {
	if len(views) == 0 {
		return nil
	}

	arena := make([]TreeNode, len(views))
	pos := make(map[types.ItemID]int, len(views))
	for i := range views {
		arena[i].ItemView = views[i]
		arena[i].Children = []*TreeNode{}
		pos[views[i].ID] = i
	}

	children := make(map[types.ItemID][]int, len(views))
	var roots, orphans []int
	for i := range arena {
		p := arena[i].ParentID
		switch {
		case p == nil:
			roots = append(roots, i)
		default:
			if _, ok := pos[*p]; ok && *p != arena[i].ID {
				children[*p] = append(children[*p], i)
			} else {
				orphans = append(orphans, i)
			}
		}
	}
	for _, idx := range children {
		sortSiblings(arena, idx)
	}

	byID := func(idx []int) {
		sort.SliceStable(idx, func(a, b int) bool { return arena[idx[a]].ID < arena[idx[b]].ID })
	}
	byID(roots)

	var start []int
	switch {
	case all:
		start = append(start, roots...)
		start = append(start, orphans...)
		byID(start)
	case len(roots) > 0:
		start = roots[:1]
	default:
		start = []int{lowestLevel(arena)}
	}
	if len(start) == 0 {
		start = []int{lowestLevel(arena)}
	}

	visited := make([]bool, len(arena))
	out := make(forest, 0, len(start))
	for _, r := range start {
		if visited[r] {
			continue
		}
		visited[r] = true
		stack := []int{r}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, c := range children[arena[cur].ID] {
				if visited[c] {
					continue
				}
				visited[c] = true
				arena[cur].Children = append(arena[cur].Children, &arena[c])
				stack = append(stack, c)
			}
		}
		out = append(out, &arena[r])
	}
	return out
}

// sortSiblings orders by (order, level); id keeps equal keys deterministic.
func sortSiblings(arena []TreeNode, idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		x, y := &arena[idx[a]], &arena[idx[b]]
		if x.Order != y.Order {
			return x.Order < y.Order
		}
		if x.Level != y.Level {
			return x.Level < y.Level
		}
		return x.ID < y.ID
	})
}

func lowestLevel(arena []TreeNode) int {
	best := 0
	for i := 1; i < len(arena); i++ {
		if arena[i].Level < arena[best].Level ||
			(arena[i].Level == arena[best].Level && arena[i].ID < arena[best].ID) {
			best = i
		}
	}
	return best
}
