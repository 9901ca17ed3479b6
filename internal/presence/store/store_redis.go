package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"healthstack/internal/presence/models"
)

const keyPrefix = "presence:"

// RedisStore keeps presence records in Redis. Location reports arrive
// continuously from every client, so the hot path is a single SET per report
// and an MGET per SOS evaluation.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedis constructs a Redis-backed presence store.
func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Upsert(ctx context.Context, record *models.PresenceRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal presence record: %w", err)
	}
	if err := s.client.Set(ctx, key(record.Identity), payload, 0).Err(); err != nil {
		return fmt.Errorf("set presence record: %w", err)
	}
	return nil
}

// GetMany returns records for exactly the identities that have one,
// preserving the order of the input sequence.
func (s *RedisStore) GetMany(ctx context.Context, identities []string) ([]*models.PresenceRecord, error) {
	if len(identities) == 0 {
		return nil, nil
	}

	keys := make([]string, len(identities))
	for i, identity := range identities {
		keys[i] = key(identity)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget presence records: %w", err)
	}

	out := make([]*models.PresenceRecord, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var record models.PresenceRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("unmarshal presence record: %w", err)
		}
		out = append(out, &record)
	}
	return out, nil
}

func key(identity string) string {
	return keyPrefix + strings.ToLower(identity)
}
