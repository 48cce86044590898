// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces the per-user hashes
const KeyPrefix = "tracker:state:"

// RedisStore keeps each snapshot in a hash with decks, matches and
// updated_at fields. Save only touches those fields.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func stateKey(userID string) string {
	return KeyPrefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	fields, err := s.client.HGetAll(ctx, stateKey(userID)).Result()
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("hgetall %s: %w", stateKey(userID), err)
	}
	if len(fields) == 0 {
		return models.Snapshot{}, false, nil
	}

	snap, err := decode(document{decks: fields["decks"], matches: fields["matches"]})
	if err != nil {
		return models.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, snap models.Snapshot) error {
	doc, err := encode(snap)
	if err != nil {
		return err
	}

	err = s.client.HSet(ctx, stateKey(userID),
		"decks", doc.decks,
		"matches", doc.matches,
		"updated_at", s.now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("hset %s: %w", stateKey(userID), err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
