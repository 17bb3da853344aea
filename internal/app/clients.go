package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/yungbote/unipilot-backend/internal/clients/redis"
	"github.com/yungbote/unipilot-backend/internal/platform/anthropic"
	"github.com/yungbote/unipilot-backend/internal/platform/keylock"
	"github.com/yungbote/unipilot-backend/internal/platform/llm"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
	"github.com/yungbote/unipilot-backend/internal/platform/openai"
)

type Clients struct {
	Generator llm.Generator
	Redis     *goredis.Client
	Locker    keylock.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	gen, err := wireGenerator(ctx, log, cfg.Generator)
	if err != nil {
		return Clients{}, err
	}
	out.Generator = gen

	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		rdb, err := redisclient.NewClient(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		out.Locker = keylock.NewRedis(rdb, log, "unipilot:lock:", cfg.LockTTL)
	} else {
		log.Warn("REDIS_ADDR not set; roadmap creation is serialized per process only")
		out.Locker = keylock.NewLocal()
	}
	return out, nil
}

// wireGenerator returns nil for provider "none"; generation then fails with a
// generation error while stored roadmaps stay readable.
func wireGenerator(ctx context.Context, log *logger.Logger, cfg GeneratorConfig) (llm.Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		c, err := openai.NewClient(log, openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.ModelRoadmap,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		return c, nil
	case "anthropic", "bedrock":
		c, err := anthropic.NewClient(ctx, log, anthropic.Config{
			Provider:   strings.ToLower(cfg.Provider),
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Region:     cfg.Region,
			Model:      cfg.ModelRoadmap,
			MaxTokens:  cfg.MaxOutputTokens,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("init %s: %w", cfg.Provider, err)
		}
		return c, nil
	case "", "none":
		log.Warn("No LLM provider configured; roadmap generation disabled")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
}
