package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/unipilot-backend/internal/http/response"
	"github.com/yungbote/unipilot-backend/internal/modules/roadmap"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type RoadmapHandler struct {
	log      *logger.Logger
	roadmaps roadmap.Service
}

func NewRoadmapHandler(log *logger.Logger, roadmaps roadmap.Service) *RoadmapHandler {
	return &RoadmapHandler{log: log.With("handler", "RoadmapHandler"), roadmaps: roadmaps}
}

// GET /api/v1/topic-fields/:id/roadmap
func (h *RoadmapHandler) GetRoadmap(c *gin.Context) {
	topicFieldID, err := uintParam(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_field_id", err)
		return
	}
	view, err := h.roadmaps.Get(c.Request.Context(), topicFieldID)
	if err != nil {
		response.RespondAPIError(c, err, "get_roadmap_failed")
		return
	}
	response.RespondOK(c, view)
}

// POST /api/v1/topic-fields/:id/roadmap/generate
func (h *RoadmapHandler) GenerateForTopicField(c *gin.Context) {
	topicFieldID, err := uintParam(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_topic_field_id", err)
		return
	}
	view, created, err := h.roadmaps.GetOrGenerate(c.Request.Context(), topicFieldID, requestUserID(c))
	h.respondGenerated(c, view, created, err)
}

// POST /api/v1/jobs/:id/roadmap/generate
func (h *RoadmapHandler) GenerateForJob(c *gin.Context) {
	jobID, err := uintParam(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	view, created, err := h.roadmaps.GetOrGenerateForJob(c.Request.Context(), jobID, requestUserID(c))
	h.respondGenerated(c, view, created, err)
}

// DELETE /api/v1/roadmaps/:id
func (h *RoadmapHandler) DeleteRoadmap(c *gin.Context) {
	roadmapID, err := uintParam(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_roadmap_id", err)
		return
	}
	if err := h.roadmaps.Delete(c.Request.Context(), roadmapID); err != nil {
		response.RespondAPIError(c, err, "delete_roadmap_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *RoadmapHandler) respondGenerated(c *gin.Context, view *roadmap.View, created bool, err error) {
	if err != nil {
		response.RespondAPIError(c, err, "generate_roadmap_failed")
		return
	}
	if created {
		response.RespondCreated(c, view)
		return
	}
	response.RespondOK(c, view)
}
