// Package llm holds the provider-neutral text generation contract shared by
// the openai and anthropic clients.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Request struct {
	Model           string
	System          string
	Prompt          string
	Temperature     *float64
	MaxOutputTokens int
}

type Result struct {
	Text  string
	Model string
	// Truncated is set when the provider stopped at the output token limit.
	Truncated    bool
	InputTokens  int
	OutputTokens int
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

type Category string

const (
	CategoryAccessDenied  Category = "access_denied"
	CategoryValidation    Category = "validation"
	CategoryModelNotReady Category = "model_not_ready"
	CategoryRateLimited   Category = "rate_limited"
	CategoryGeneric       Category = "generic"
)

var ErrEmptyOutput = errors.New("model returned no text")

// Error is a failed provider call. Status is the upstream HTTP status when
// one was received.
type Error struct {
	Provider string
	Category Category
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s %s (http %d): %v", e.Provider, e.Category, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Category, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// Retryable reports whether trying the same call later may succeed.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Category {
	case CategoryRateLimited, CategoryModelNotReady:
		return true
	case CategoryGeneric:
		return e.Status == 0 || e.Status >= 500
	}
	return false
}

// Classify maps an upstream status and message onto a Category.
func Classify(status int, msg string) Category {
	low := strings.ToLower(msg)
	switch {
	case status == 401 || status == 403 || strings.Contains(low, "accessdenied") || strings.Contains(low, "access denied"):
		return CategoryAccessDenied
	case status == 429 || strings.Contains(low, "throttl") || strings.Contains(low, "rate limit"):
		return CategoryRateLimited
	case strings.Contains(low, "modelnotready") || strings.Contains(low, "model not ready") || status == 529 || status == 503:
		return CategoryModelNotReady
	case status == 400 || status == 422 || strings.Contains(low, "validationexception"):
		return CategoryValidation
	}
	return CategoryGeneric
}

// CategoryOf returns the category of err, or "" when err did not come from a
// provider.
func CategoryOf(err error) Category {
	var le *Error
	if errors.As(err, &le) {
		return le.Category
	}
	return ""
}
