// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/hearthstone-tracker/models"
)

// SQLStore keeps snapshots in the user_state table
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Load(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	var doc document
	err := s.db.QueryRowContext(ctx, `
		SELECT decks, matches FROM user_state WHERE user_id = $1
	`, userID).Scan(&doc.decks, &doc.matches)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("query user_state: %w", err)
	}

	snap, err := decode(doc)
	if err != nil {
		return models.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Save replaces both documents of the user
func (s *SQLStore) Save(ctx context.Context, userID string, snap models.Snapshot) error {
	doc, err := encode(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_state (user_id, decks, matches, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			decks = EXCLUDED.decks,
			matches = EXCLUDED.matches,
			updated_at = EXCLUDED.updated_at
	`, userID, doc.decks, doc.matches, s.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert user_state: %w", err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the caller
func (s *SQLStore) Close() error { return nil }
