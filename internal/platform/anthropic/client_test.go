package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unipilot-backend/internal/platform/llm"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), logger.Nop(), Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "claude-test",
		MaxRetries: 0,
	})
	require.NoError(t, err)
	return c
}

func messageBody(stop string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",` +
		`"content":[{"type":"text","text":"{\"name\":\"X\",\"items\":[]}"}],` +
		`"stop_reason":"` + stop + `","usage":{"input_tokens":10,"output_tokens":20}}`
}

func TestGenerateSendsMessage(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageBody("end_turn"))
	})

	temp := 0.3
	res, err := c.Generate(context.Background(), llm.Request{System: "sys", Prompt: "plan", Temperature: &temp, MaxOutputTokens: 8192})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"X","items":[]}`, res.Text)
	assert.False(t, res.Truncated)
	assert.Equal(t, 20, res.OutputTokens)

	assert.Equal(t, "claude-test", got["model"])
	assert.Equal(t, float64(8192), got["max_tokens"])
	assert.Equal(t, 0.3, got["temperature"])
}

func TestGenerateMaxTokensIsTruncated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageBody("max_tokens"))
	})
	res, err := c.Generate(context.Background(), llm.Request{Prompt: "plan"})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
}

func TestGenerateMapsErrorCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	})
	_, err := c.Generate(context.Background(), llm.Request{Prompt: "plan"})
	require.Error(t, err)
	assert.Equal(t, llm.CategoryRateLimited, llm.CategoryOf(err))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), logger.Nop(), Config{Provider: ProviderAnthropic})
	assert.Error(t, err)
	_, err = NewClient(context.Background(), logger.Nop(), Config{Provider: "vertex"})
	assert.Error(t, err)
}
