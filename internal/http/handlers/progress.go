package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/http/response"
	"github.com/yungbote/unipilot-backend/internal/modules/roadmap"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type ProgressHandler struct {
	log      *logger.Logger
	roadmaps roadmap.Service
}

func NewProgressHandler(log *logger.Logger, roadmaps roadmap.Service) *ProgressHandler {
	return &ProgressHandler{log: log.With("handler", "ProgressHandler"), roadmaps: roadmaps}
}

// GET /api/v1/users/roadmap/progress?topic_field_id=
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	topicFieldID, err := uintParam(c.Query("topic_field_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_field_id", err)
		return
	}
	view, err := h.roadmaps.Progress(c.Request.Context(), requestUserID(c), topicFieldID)
	if err != nil {
		response.RespondAPIError(c, err, "get_progress_failed")
		return
	}
	response.RespondOK(c, view)
}

// PUT /api/v1/users/roadmap/items/:id/progress
func (h *ProgressHandler) UpdateItemProgress(c *gin.Context) {
	itemID, err := uintParam(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_roadmap_item_id", err)
		return
	}
	var in roadmap.ProgressUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.roadmaps.UpdateProgress(c.Request.Context(), requestUserID(c), domain.ItemID(itemID), in)
	if err != nil {
		response.RespondAPIError(c, err, "update_progress_failed")
		return
	}
	response.RespondOK(c, gin.H{"progress": row})
}
