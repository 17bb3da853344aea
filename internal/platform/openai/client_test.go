package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unipilot-backend/internal/platform/llm"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test", MaxRetries: 2})
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

const okBody = `{"model":"gpt-test","status":"completed","output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"name\":\"X\"}"}]}],"usage":{"input_tokens":3,"output_tokens":4}}`

func TestGenerateSendsRequestAndReadsText(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &got))
		_, _ = io.WriteString(w, okBody)
	})

	temp := 0.3
	res, err := c.Generate(context.Background(), llm.Request{System: "sys", Prompt: "hi", Temperature: &temp, MaxOutputTokens: 8192})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"X"}`, res.Text)
	assert.False(t, res.Truncated)
	assert.Equal(t, 4, res.OutputTokens)

	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, 0.3, got["temperature"])
	assert.Equal(t, float64(8192), got["max_output_tokens"])
	assert.Len(t, got["input"], 2)
}

func TestGenerateReportsTruncation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := strings.Replace(okBody, `"status":"completed"`, `"status":"incomplete","incomplete_details":{"reason":"max_output_tokens"}`, 1)
		_, _ = io.WriteString(w, body)
	})
	res, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, okBody)
	})
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateDropsRejectedTemperature(t *testing.T) {
	var withTemp, withoutTemp atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		if _, ok := body["temperature"]; ok {
			withTemp.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`)
			return
		}
		withoutTemp.Add(1)
		_, _ = io.WriteString(w, okBody)
	})
	temp := 0.7
	for i := 0; i < 2; i++ {
		_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi", Temperature: &temp})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), withTemp.Load())
	assert.Equal(t, int32(2), withoutTemp.Load())
}

func TestGenerateClassifiesErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"message":"nope"}}`)
	})
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, llm.CategoryAccessDenied, llm.CategoryOf(err))
}

func TestGenerateEmptyOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"completed","output":[]}`)
	})
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, llm.ErrEmptyOutput)
}
