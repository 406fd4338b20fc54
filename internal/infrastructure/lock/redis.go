package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farm-loan-ledger/pkg/logger"
)

// compare-and-delete so a holder never releases someone else's lock after expiry
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a SET NX PX lock for multi-instance deployments.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	// poll interval bounds while waiting for a held key
	minWait, maxWait time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl, minWait: 10 * time.Millisecond, maxWait: 250 * time.Millisecond}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.minWait
	b.MaxInterval = r.maxWait
	b.MaxElapsedTime = 0 // bounded by ctx

	op := func() error {
		ok, err := r.rdb.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("redis lock %s: %w", k, err))
		}
		if !ok {
			return ErrNotAcquired
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if ctx.Err() != nil {
			return nil, ErrNotAcquired
		}
		return nil, err
	}

	return func() {
		// release must work even when the caller's ctx is already done
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(rctx, r.rdb, []string{k}, token).Err(); err != nil {
			logger.Warn(ctx, "redis unlock failed", zap.String("key", k), zap.Error(err))
		}
	}, nil
}
