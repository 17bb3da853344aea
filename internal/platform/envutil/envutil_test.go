package envutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvParsing(t *testing.T) {
	t.Setenv("X_INT", "42")
	t.Setenv("X_BAD_INT", "nope")
	t.Setenv("X_FLOAT", "0.3")
	t.Setenv("X_BOOL", "yes")
	t.Setenv("X_DUR", "90s")
	t.Setenv("X_DUR_SECS", "120")
	t.Setenv("X_CSV", "a, b,,c")

	assert.Equal(t, 42, Int("X_INT", 1))
	assert.Equal(t, 1, Int("X_BAD_INT", 1))
	assert.Equal(t, 0.3, Float("X_FLOAT", 0))
	assert.True(t, Bool("X_BOOL", false))
	assert.True(t, Bool("X_MISSING", true))
	assert.Equal(t, 90*time.Second, Duration("X_DUR", 0))
	assert.Equal(t, 2*time.Minute, Duration("X_DUR_SECS", 0))
	assert.Equal(t, []string{"a", "b", "c"}, CSV("X_CSV", nil))
	assert.Equal(t, "def", String("X_MISSING", "def"))
}
