package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/unipilot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/unipilot-backend/internal/http/middleware"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

func TestRouterProtectsWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Log:             logger.Nop(),
		AuthMiddleware:  httpMW.NewAuthMiddleware(logger.Nop(), "secret"),
		HealthHandler:   httpH.NewHealthHandler(nil),
		RoadmapHandler:  httpH.NewRoadmapHandler(logger.Nop(), nil),
		ProgressHandler: httpH.NewProgressHandler(logger.Nop(), nil),
	})

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK},
		{http.MethodPost, "/api/v1/topic-fields/1/roadmap/generate", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/jobs/1/roadmap/generate", http.StatusUnauthorized},
		{http.MethodDelete, "/api/v1/roadmaps/1", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users/roadmap/progress?topic_field_id=1", http.StatusUnauthorized},
		{http.MethodPut, "/api/v1/users/roadmap/items/1/progress", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/topic-fields/abc/roadmap", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: got=%d want=%d", tc.method, tc.path, rec.Code, tc.want)
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s %s: missing X-Request-Id", tc.method, tc.path)
		}
	}
}
