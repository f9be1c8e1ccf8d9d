package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is the response captured for one idempotency key. Replays return it
// verbatim without re-executing the handler.
type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store persists records keyed by (tenant, route, client key).
type Store interface {
	// Get returns nil, nil when no record exists.
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, record *Record, ttl time.Duration) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Store over the shared redis client.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

const keyPrefix = "idem:"

func (s *redisStore) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *redisStore) Put(ctx context.Context, key string, record *Record, ttl time.Duration) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	// NX keeps the first recorded response authoritative under racing retries
	return s.client.SetNX(ctx, keyPrefix+key, raw, ttl).Err()
}
