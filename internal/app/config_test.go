package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PARENT_MATCH_POLICY", "")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Generator.Provider)
	assert.Equal(t, 8192, cfg.Generator.MaxOutputTokens)
	assert.Equal(t, "lenient", cfg.ParentPolicy)
	assert.Equal(t, 5*time.Minute, cfg.GenerateTimeout)
	assert.Equal(t, 6*time.Minute, cfg.LockTTL)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadConfigFileOverlayLosesToEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unipilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generator:
  provider: bedrock
  model_roadmap: anthropic.claude-sonnet
  region: eu-central-1
  max_output_tokens: 16000
  timeout: 90s
generate_timeout: 2m
parent_match_policy: strict
cors_origins: [https://app.example]
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PARENT_MATCH_POLICY", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("LLM_MODEL_ROADMAP", "from-env")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "bedrock", cfg.Generator.Provider)
	assert.Equal(t, "from-env", cfg.Generator.ModelRoadmap)
	assert.Equal(t, "eu-central-1", cfg.Generator.Region)
	assert.Equal(t, 16000, cfg.Generator.MaxOutputTokens)
	assert.Equal(t, 90*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.GenerateTimeout)
	assert.Equal(t, "strict", cfg.ParentPolicy)
	assert.Equal(t, []string{"https://app.example"}, cfg.CORSOrigins)
}

func TestLoadConfigRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadConfig(logger.Nop())
	assert.Error(t, err)
}

func TestLoadConfigBadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig(logger.Nop())
	assert.Error(t, err)
}

func TestWireGeneratorNone(t *testing.T) {
	gen, err := wireGenerator(context.Background(), logger.Nop(), GeneratorConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, gen)

	_, err = wireGenerator(context.Background(), logger.Nop(), GeneratorConfig{Provider: "mystery"})
	assert.Error(t, err)
}
