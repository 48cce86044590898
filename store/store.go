// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/hearthstone-tracker/cliparse"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/redis/go-redis/v9"
)

// Store types accepted by Open
const (
	TypeSQL    = "sql"
	TypeRedis  = "redis"
	TypeMemory = "memory"
)

// Store is a remote state store: one snapshot document per user.
// Load reports a missing document with found == false and a nil error.
type Store interface {
	Load(ctx context.Context, userID string) (snap models.Snapshot, found bool, err error)
	Save(ctx context.Context, userID string, snap models.Snapshot) error
	Close() error
}

// Open builds the store selected by cfg.StoreType. The SQL store shares db
// and does not close it.
func Open(ctx context.Context, cfg cliparse.Config, db *sql.DB) (Store, error) {
	switch cfg.StoreType {
	case TypeSQL, "":
		if db == nil {
			return nil, fmt.Errorf("sql store needs a database connection")
		}
		return NewSQLStore(db), nil
	case TypeMemory:
		return NewMemory(), nil
	case TypeRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("unsupported store type %q", cfg.StoreType)
}

// document is the stored form of a snapshot: each half as its own JSON text
type document struct {
	decks   string
	matches string
}

func encode(snap models.Snapshot) (document, error) {
	decks := snap.Decks
	if decks == nil {
		decks = []models.Deck{}
	}
	matches := snap.Matches
	if matches == nil {
		matches = []models.Match{}
	}

	d, err := json.Marshal(decks)
	if err != nil {
		return document{}, fmt.Errorf("marshal decks: %w", err)
	}
	m, err := json.Marshal(matches)
	if err != nil {
		return document{}, fmt.Errorf("marshal matches: %w", err)
	}
	return document{decks: string(d), matches: string(m)}, nil
}

// decode treats an empty field as an empty list
func decode(doc document) (models.Snapshot, error) {
	var snap models.Snapshot
	if doc.decks != "" {
		if err := json.Unmarshal([]byte(doc.decks), &snap.Decks); err != nil {
			return models.Snapshot{}, fmt.Errorf("unmarshal decks: %w", err)
		}
	}
	if doc.matches != "" {
		if err := json.Unmarshal([]byte(doc.matches), &snap.Matches); err != nil {
			return models.Snapshot{}, fmt.Errorf("unmarshal matches: %w", err)
		}
	}
	return snap, nil
}
