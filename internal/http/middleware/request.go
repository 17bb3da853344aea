package middleware

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/unipilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"

	maxRequestIDLen = 128
)

// RequestIDs stamps every request with a request id and a trace id.
// A caller supplied request id is kept when it is printable and short;
// the trace id prefers the active span so logs line up with exported traces.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := cleanRequestID(c.GetHeader(HeaderRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}

		traceID := ""
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else if in := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderTraceID))); isTraceID(in) {
			traceID = in
		} else {
			u := uuid.New()
			traceID = hex.EncodeToString(u[:])
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		c.Header(HeaderRequestID, reqID)
		c.Header(HeaderTraceID, traceID)
		c.Next()
	}
}

// AccessLog writes one line per request. Requests slower than slow are
// logged at warn even when they succeed; slow <= 0 disables that.
func AccessLog(log *logger.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		}
		if id := c.Param("id"); id != "" {
			kv = append(kv, "resource_id", id)
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			kv = append(kv, "request_id", td.RequestID, "trace_id", td.TraceID)
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			kv = append(kv, "user_id", rd.UserID)
		}
		if err := c.Errors.Last(); err != nil {
			kv = append(kv, "error", err.Error())
		}

		switch {
		case status >= 500:
			log.Error("request failed", kv...)
		case status >= 400:
			log.Warn("request rejected", kv...)
		case slow > 0 && elapsed >= slow:
			log.Warn("slow request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}

func cleanRequestID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxRequestIDLen {
		return ""
	}
	for _, r := range v {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return v
}

func isTraceID(v string) bool {
	if len(v) != 32 || v == strings.Repeat("0", 32) {
		return false
	}
	_, err := hex.DecodeString(v)
	return err == nil
}
