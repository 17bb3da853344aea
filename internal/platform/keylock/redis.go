package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/unipilot-backend/internal/platform/httpx"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker backed by SET NX PX. The ttl bounds how long a crashed
// holder can block others.
type Redis struct {
	rdb    *goredis.Client
	log    *logger.Logger
	prefix string
	ttl    time.Duration

	minPoll time.Duration
	maxPoll time.Duration
}

func NewRedis(rdb *goredis.Client, baseLog *logger.Logger, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if prefix == "" {
		prefix = "lock:"
	}
	return &Redis{
		rdb:     rdb,
		log:     baseLog.With("component", "RedisKeyLock"),
		prefix:  prefix,
		ttl:     ttl,
		minPoll: 25 * time.Millisecond,
		maxPoll: 500 * time.Millisecond,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	if r == nil || r.rdb == nil {
		return nil, errors.New("redis keylock not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	full := r.prefix + key
	token := uuid.NewString()
	bo := httpx.Backoff{Base: r.minPoll, Max: r.maxPoll}

	for {
		ok, err := r.rdb.SetNX(ctx, full, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", full, err)
		}
		if ok {
			break
		}
		if err := httpx.Sleep(ctx, httpx.JitterSleep(bo.Next())); err != nil {
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be cancelled
			relCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := releaseScript.Run(relCtx, r.rdb, []string{full}, token).Err(); err != nil {
				r.log.Warn("Failed to release redis lock", "key", full, "error", err)
			}
		})
	}, nil
}
