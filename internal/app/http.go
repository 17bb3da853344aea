package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/unipilot-backend/internal/http"
	httpH "github.com/yungbote/unipilot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/unipilot-backend/internal/http/middleware"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Roadmap  *httpH.RoadmapHandler
	Progress *httpH.ProgressHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Roadmap:  httpH.NewRoadmapHandler(log, services.Roadmap),
		Progress: httpH.NewProgressHandler(log, services.Roadmap),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		CORSOrigins:     cfg.CORSOrigins,
		SlowRequest:     cfg.SlowRequest,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		RoadmapHandler:  handlers.Roadmap,
		ProgressHandler: handlers.Progress,
	})
}
