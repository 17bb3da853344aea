package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndCodeUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", Validation("SEMESTER_MISSING", base))

	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(err))
	assert.Equal(t, "SEMESTER_MISSING", CodeOf(err, "x"))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsRetryable(err))
}

func TestGenerationIsRetryable(t *testing.T) {
	err := Generation("JSON_PARSE_ERROR", errors.New("bad json"))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestDefaultsForPlainErrors(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "fallback", CodeOf(err, "fallback"))
}

func TestErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", (&Error{Code: "NOT_FOUND"}).Error())
	assert.Equal(t, "api error (418)", (&Error{Status: 418}).Error())
	assert.Equal(t, "api error", (&Error{}).Error())
}
