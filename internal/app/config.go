package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	redisclient "github.com/yungbote/unipilot-backend/internal/clients/redis"
	"github.com/yungbote/unipilot-backend/internal/data/db"
	"github.com/yungbote/unipilot-backend/internal/observability"
	"github.com/yungbote/unipilot-backend/internal/platform/envutil"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

// GeneratorConfig selects and configures the text generation provider.
type GeneratorConfig struct {
	// Provider is openai, anthropic, bedrock or none.
	Provider        string        `yaml:"provider"`
	ModelRoadmap    string        `yaml:"model_roadmap"`
	Region          string        `yaml:"region"`
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Temperature     float64       `yaml:"temperature"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
}

type Config struct {
	Env           string
	Version       string
	HTTPAddr      string
	ShutdownGrace time.Duration

	JWTSecretKey string
	CORSOrigins  []string
	SlowRequest  time.Duration

	DB          db.Config
	AutoMigrate bool

	Redis   redisclient.Options
	LockTTL time.Duration

	Generator       GeneratorConfig
	GenerateTimeout time.Duration
	ParentPolicy    string

	Otel observability.OtelConfig
}

// fileConfig is the optional CONFIG_FILE overlay. Environment variables win.
type fileConfig struct {
	Generator       GeneratorConfig `yaml:"generator"`
	GenerateTimeout time.Duration   `yaml:"generate_timeout"`
	ParentPolicy    string          `yaml:"parent_match_policy"`
	CORSOrigins     []string        `yaml:"cors_origins"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	path = strings.TrimSpace(path)
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func orString(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

func LoadConfig(log *logger.Logger) (Config, error) {
	fc, err := loadFileConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	fg := fc.Generator

	provider := strings.ToLower(envutil.String("LLM_PROVIDER", orString(fg.Provider, "openai")))
	defaultModel := "gpt-4.1-mini"
	if provider == "anthropic" || provider == "bedrock" {
		defaultModel = "claude-sonnet-4-5"
	}
	temp := 0.7
	if fg.Temperature != 0 {
		temp = fg.Temperature
	}

	cfg := Config{
		Env:           envutil.String("APP_ENV", "development"),
		Version:       envutil.String("APP_VERSION", "dev"),
		HTTPAddr:      envutil.String("HTTP_ADDR", ":8080"),
		ShutdownGrace: envutil.Duration("SHUTDOWN_GRACE", 15*time.Second),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		CORSOrigins:  envutil.CSV("CORS_ORIGINS", fc.CORSOrigins),
		SlowRequest:  envutil.Duration("HTTP_SLOW_REQUEST", 2*time.Second),

		DB: db.Config{
			Driver:        envutil.String("DB_DRIVER", "postgres"),
			Host:          envutil.String("POSTGRES_HOST", "localhost"),
			Port:          envutil.String("POSTGRES_PORT", "5432"),
			User:          envutil.String("POSTGRES_USER", "postgres"),
			Password:      envutil.String("POSTGRES_PASSWORD", ""),
			Name:          envutil.String("POSTGRES_NAME", "unipilot"),
			SSLMode:       envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:    envutil.String("SQLITE_PATH", "unipilot.db"),
			SlowThreshold: envutil.Duration("DB_SLOW_THRESHOLD", time.Second),
		},
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true),

		Redis: redisclient.Options{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},

		Generator: GeneratorConfig{
			Provider:        provider,
			ModelRoadmap:    envutil.String("LLM_MODEL_ROADMAP", orString(fg.ModelRoadmap, defaultModel)),
			Region:          envutil.String("AWS_REGION", orString(fg.Region, "us-east-1")),
			APIKey:          envutil.String("LLM_API_KEY", fg.APIKey),
			BaseURL:         envutil.String("LLM_BASE_URL", fg.BaseURL),
			Temperature:     envutil.Float("LLM_TEMPERATURE", temp),
			MaxOutputTokens: envutil.Int("LLM_MAX_OUTPUT_TOKENS", orInt(fg.MaxOutputTokens, 8192)),
			Timeout:         envutil.Duration("LLM_TIMEOUT", orDuration(fg.Timeout, 3*time.Minute)),
			MaxRetries:      envutil.Int("LLM_MAX_RETRIES", orInt(fg.MaxRetries, 2)),
		},
		GenerateTimeout: envutil.Duration("ROADMAP_GENERATE_TIMEOUT", orDuration(fc.GenerateTimeout, 5*time.Minute)),
		ParentPolicy:    envutil.String("PARENT_MATCH_POLICY", orString(fc.ParentPolicy, "lenient")),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "unipilot-backend"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
	}
	cfg.Otel.Environment = cfg.Env
	cfg.Otel.Version = cfg.Version
	// a crashed lock holder must not outlive one generation by much
	cfg.LockTTL = envutil.Duration("TARGET_LOCK_TTL", cfg.GenerateTimeout+time.Minute)

	if cfg.JWTSecretKey == "defaultsecret" && cfg.Env == "production" {
		return Config{}, fmt.Errorf("JWT_SECRET_KEY must be set in production")
	}
	if log != nil {
		log.Info("Loaded config",
			"env", cfg.Env,
			"db_driver", cfg.DB.Driver,
			"llm_provider", cfg.Generator.Provider,
			"llm_model", cfg.Generator.ModelRoadmap,
			"parent_match_policy", cfg.ParentPolicy,
			"redis_lock", cfg.Redis.Addr != "",
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg, nil
}
