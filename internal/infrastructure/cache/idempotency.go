package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Load when no record exists for the key.
var ErrMiss = errors.New("idempotency record not found")

// Record is a stored response for one (route, actor, request id).
type Record struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type,omitempty"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type IdempotencyStore struct {
	rdb *redis.Client
}

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

// Reserve writes an in-progress record if the key is free.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, rec Record, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, ttl).Result()
}

func (s *IdempotencyStore) Load(ctx context.Context, key string) (Record, error) {
	var rec Record
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, ErrMiss
	}
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(v, &rec)
	return rec, err
}

func (s *IdempotencyStore) Save(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

// Release drops a reservation so the client can retry, e.g. after a 5xx.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
