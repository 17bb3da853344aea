package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/modules/roadmap"
	"github.com/yungbote/unipilot-backend/internal/platform/apierr"
	"github.com/yungbote/unipilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type fakeRoadmaps struct {
	view    *roadmap.View
	created bool
	err     error

	gotUser   uint
	gotUpdate roadmap.ProgressUpdate
}

func (f *fakeRoadmaps) Get(ctx context.Context, topicFieldID uint) (*roadmap.View, error) {
	return f.view, f.err
}

func (f *fakeRoadmaps) GetOrGenerate(ctx context.Context, topicFieldID, userID uint) (*roadmap.View, bool, error) {
	f.gotUser = userID
	return f.view, f.created, f.err
}

func (f *fakeRoadmaps) GetOrGenerateForJob(ctx context.Context, jobID, userID uint) (*roadmap.View, bool, error) {
	f.gotUser = userID
	return f.view, f.created, f.err
}

func (f *fakeRoadmaps) IngestRaw(ctx context.Context, topicFieldID uint, raw string, truncated bool) (*roadmap.View, bool, error) {
	return f.view, f.created, f.err
}

func (f *fakeRoadmaps) Delete(ctx context.Context, roadmapID uint) error { return f.err }

func (f *fakeRoadmaps) Progress(ctx context.Context, userID, topicFieldID uint) (*roadmap.ProgressView, error) {
	f.gotUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return &roadmap.ProgressView{TopicFieldID: topicFieldID, TotalCount: 3, CompletedCount: 1, ProgressPercentage: 33.3}, nil
}

func (f *fakeRoadmaps) UpdateProgress(ctx context.Context, userID uint, itemID types.ItemID, in roadmap.ProgressUpdate) (*types.UserRoadmapItem, error) {
	f.gotUser, f.gotUpdate = userID, in
	if f.err != nil {
		return nil, f.err
	}
	return &types.UserRoadmapItem{UserID: userID, RoadmapItemID: itemID, Completed: in.Completed}, nil
}

func newTestRouter(svc roadmap.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: 42})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	rh := NewRoadmapHandler(logger.Nop(), svc)
	ph := NewProgressHandler(logger.Nop(), svc)
	r.GET("/topic-fields/:id/roadmap", rh.GetRoadmap)
	r.POST("/topic-fields/:id/roadmap/generate", rh.GenerateForTopicField)
	r.POST("/jobs/:id/roadmap/generate", rh.GenerateForJob)
	r.DELETE("/roadmaps/:id", rh.DeleteRoadmap)
	r.GET("/progress", ph.GetProgress)
	r.PUT("/items/:id/progress", ph.UpdateItemProgress)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sampleView() *roadmap.View {
	rm := &types.Roadmap{ID: 7, TopicFieldID: 3, Name: "Plan"}
	items := []*types.RoadmapItem{{ID: 1, RoadmapID: 7, Title: "Root", Semester: 1, ItemType: types.ItemCourse}}
	return &roadmap.View{
		Roadmap: rm,
		Items:   roadmap.ItemViews(items),
		Tree:    roadmap.BuildTree(items),
		Roots:   roadmap.BuildForest(items),
	}
}

func TestGenerateStatusReflectsCreation(t *testing.T) {
	for _, tc := range []struct {
		created bool
		path    string
		want    int
	}{
		{true, "/topic-fields/3/roadmap/generate", http.StatusCreated},
		{false, "/topic-fields/3/roadmap/generate", http.StatusOK},
		{true, "/jobs/9/roadmap/generate", http.StatusCreated},
		{false, "/jobs/9/roadmap/generate", http.StatusOK},
	} {
		svc := &fakeRoadmaps{view: sampleView(), created: tc.created}
		rec := do(newTestRouter(svc), http.MethodPost, tc.path, "")
		require.Equal(t, tc.want, rec.Code, tc.path)
		assert.Equal(t, uint(42), svc.gotUser)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		for _, k := range []string{"roadmap", "items", "tree", "roots"} {
			assert.Contains(t, body, k)
		}
	}
}

func TestRoadmapErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err       error
		want      int
		code      string
		retryable bool
	}{
		{apierr.NotFound(roadmap.CodeRoadmapNotFound, roadmap.ErrNotFound), http.StatusNotFound, roadmap.CodeRoadmapNotFound, false},
		{apierr.Validation(roadmap.CodeInvalidRoadmap, roadmap.ErrValidation), http.StatusUnprocessableEntity, roadmap.CodeInvalidRoadmap, false},
		{apierr.Generation(roadmap.CodeGenerationFailed, roadmap.ErrGeneration), http.StatusBadGateway, roadmap.CodeGenerationFailed, true},
		{errors.New("boom"), http.StatusInternalServerError, "get_roadmap_failed", false},
	}
	for _, tc := range cases {
		rec := do(newTestRouter(&fakeRoadmaps{err: tc.err}), http.MethodGet, "/topic-fields/3/roadmap", "")
		require.Equal(t, tc.want, rec.Code, tc.code)

		var env struct {
			Error struct {
				Message   string `json:"message"`
				Code      string `json:"code"`
				Retryable bool   `json:"retryable"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, tc.code, env.Error.Code)
		assert.Equal(t, tc.retryable, env.Error.Retryable)
		if tc.want == http.StatusInternalServerError {
			assert.Equal(t, "internal error", env.Error.Message)
		}
	}
}

func TestRoadmapRejectsBadIDs(t *testing.T) {
	r := newTestRouter(&fakeRoadmaps{view: sampleView()})
	for _, path := range []string{"/topic-fields/abc/roadmap", "/topic-fields/0/roadmap"} {
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, path, "").Code, path)
	}
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/roadmaps/-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/jobs/x/roadmap/generate", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/roadmaps/7", "").Code)
}

func TestProgressHandlers(t *testing.T) {
	svc := &fakeRoadmaps{}
	r := newTestRouter(svc)

	rec := do(r, http.MethodGet, "/progress?topic_field_id=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"progress_percentage":33.3`)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/progress", "").Code)

	rec = do(r, http.MethodPut, "/items/5/progress", `{"completed":true,"notes":"halfway"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, svc.gotUpdate.Completed)
	require.NotNil(t, svc.gotUpdate.Notes)
	assert.Equal(t, "halfway", *svc.gotUpdate.Notes)
	assert.Equal(t, uint(42), svc.gotUser)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/items/5/progress", `{"completed":`).Code)

	svc.err = apierr.NotFound(roadmap.CodeItemNotFound, fmt.Errorf("%w: item 5", roadmap.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/items/5/progress", `{"completed":true}`).Code)
}
