package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects and pings within timeout.
func OpenRedis(ctx context.Context, addr string, db int, timeout time.Duration) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := r.Ping(pctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
