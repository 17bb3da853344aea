package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/unipilot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/unipilot-backend/internal/http/middleware"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger
	// ServiceName labels server spans; tracing middleware is skipped when empty.
	ServiceName string
	CORSOrigins []string
	// SlowRequest marks successful requests at or above it as warnings.
	SlowRequest time.Duration

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	RoadmapHandler  *httpH.RoadmapHandler
	ProgressHandler *httpH.ProgressHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.AccessLog(cfg.Log, cfg.SlowRequest))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		// Roadmaps (public read)
		if cfg.RoadmapHandler != nil {
			api.GET("/topic-fields/:id/roadmap", cfg.RoadmapHandler.GetRoadmap)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Roadmaps
		if cfg.RoadmapHandler != nil {
			protected.POST("/topic-fields/:id/roadmap/generate", cfg.RoadmapHandler.GenerateForTopicField)
			protected.POST("/jobs/:id/roadmap/generate", cfg.RoadmapHandler.GenerateForJob)
			protected.DELETE("/roadmaps/:id", cfg.RoadmapHandler.DeleteRoadmap)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.GET("/users/roadmap/progress", cfg.ProgressHandler.GetProgress)
			protected.PUT("/users/roadmap/items/:id/progress", cfg.ProgressHandler.UpdateItemProgress)
		}
	}

	return r
}
