package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

// Options selects the redis instance backing the roadmap target lock.
type Options struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the startup ping; defaults to 5s.
	PingTimeout time.Duration
}

// NewClient dials opts.Addr and pings it once. An empty address is an error;
// callers decide whether redis is optional.
func NewClient(log *logger.Logger, opts Options) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	log.Info("Connected to redis", "addr", addr, "db", opts.DB)
	return rdb, nil
}
