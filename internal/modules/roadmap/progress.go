package roadmap

import (
	"context"
	"fmt"
	"math"
	"time"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/apierr"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
)

type ProgressItem struct {
	ItemView
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       string     `json:"notes"`
}

type ProgressView struct {
	RoadmapID          uint           `json:"roadmap_id"`
	TopicFieldID       uint           `json:"topic_field_id"`
	Items              []ProgressItem `json:"items"`
	CompletedCount     int            `json:"completed_count"`
	TotalCount         int            `json:"total_count"`
	ProgressPercentage float64        `json:"progress_percentage"`
}

// ProgressUpdate is a partial update; a nil Notes keeps the stored notes.
type ProgressUpdate struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       *string    `json:"notes"`
}

// Percentage rounds to one decimal; no items is 0.
func Percentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(1000*float64(completed)/float64(total)) / 10
}

func (s *service) Progress(ctx context.Context, userID, topicFieldID uint) (*ProgressView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rm, err := s.roadmaps.GetByTopicFieldID(dbc, topicFieldID)
	if err != nil {
		return nil, apierr.Internal("LOAD_ROADMAP_FAILED", err)
	}
	if rm == nil {
		return nil, apierr.NotFound(CodeRoadmapNotFound, fmt.Errorf("%w: no roadmap for topic field %d", ErrNotFound, topicFieldID))
	}
	items, err := s.items.ListByRoadmapID(dbc, rm.ID)
	if err != nil {
		return nil, apierr.Internal("LOAD_ROADMAP_ITEMS_FAILED", err)
	}
	ids := make([]types.ItemID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	rows, err := s.progress.ListByUserAndItemIDs(dbc, userID, ids)
	if err != nil {
		return nil, apierr.Internal("LOAD_PROGRESS_FAILED", err)
	}
	byItem := make(map[types.ItemID]*types.UserRoadmapItem, len(rows))
	for _, r := range rows {
		byItem[r.RoadmapItemID] = r
	}

	out := &ProgressView{
		RoadmapID:    rm.ID,
		TopicFieldID: rm.TopicFieldID,
		Items:        make([]ProgressItem, 0, len(items)),
		TotalCount:   len(items),
	}
	for _, it := range items {
		pi := ProgressItem{ItemView: NewItemView(it)}
		if r := byItem[it.ID]; r != nil {
			pi.Completed = r.Completed
			pi.CompletedAt = r.CompletedAt
			pi.Notes = r.Notes
			if r.Completed {
				out.CompletedCount++
			}
		}
		out.Items = append(out.Items, pi)
	}
	out.ProgressPercentage = Percentage(out.CompletedCount, out.TotalCount)
	return out, nil
}

func (s *service) UpdateProgress(ctx context.Context, userID uint, itemID types.ItemID, in ProgressUpdate) (*types.UserRoadmapItem, error) {
	dbc := dbctx.Context{Ctx: ctx}
	item, err := s.items.GetByID(dbc, itemID)
	if err != nil {
		return nil, apierr.Internal("LOAD_ROADMAP_ITEM_FAILED", err)
	}
	if item == nil {
		return nil, apierr.NotFound(CodeItemNotFound, fmt.Errorf("%w: roadmap item %d", ErrNotFound, itemID))
	}

	row := &types.UserRoadmapItem{UserID: userID, RoadmapItemID: item.ID, Completed: in.Completed}
	prev, err := s.progress.ListByUserAndItemIDs(dbc, userID, []types.ItemID{item.ID})
	if err != nil {
		return nil, apierr.Internal("LOAD_PROGRESS_FAILED", err)
	}
	if len(prev) > 0 {
		row.Notes = prev[0].Notes
		row.CompletedAt = prev[0].CompletedAt
	}
	if in.Notes != nil {
		row.Notes = *in.Notes
	}
	switch {
	case !in.Completed:
		row.CompletedAt = nil
	case in.CompletedAt != nil:
		at := in.CompletedAt.UTC()
		row.CompletedAt = &at
	case row.CompletedAt == nil:
		now := time.Now().UTC()
		row.CompletedAt = &now
	}

	if err := s.progress.Upsert(dbc, row); err != nil {
		s.log.Error("Update roadmap progress failed", "user_id", userID, "roadmap_item_id", item.ID, "error", err)
		return nil, apierr.Internal("UPDATE_PROGRESS_FAILED", err)
	}
	return row, nil
}
