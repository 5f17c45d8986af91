package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a sender-scoped idempotency key to the id of the
// message it created, so that retried sends replay the original message
// instead of inserting a duplicate.
// Key format: idem:<sender>:<key>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis
// client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Lookup returns the message id recorded under the key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, sender, key string) (int64, bool, error) {
	id, err := s.client.Get(ctx, s.key(sender, key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Record stores the message id created under the key (expires after
// idempotencyTTL).
func (s *IdempotencyStore) Record(ctx context.Context, sender, key string, id int64) error {
	return s.client.Set(ctx, s.key(sender, key), id, idempotencyTTL).Err()
}

func (s *IdempotencyStore) key(sender, key string) string {
	return fmt.Sprintf("idem:%s:%s", sender, key)
}
