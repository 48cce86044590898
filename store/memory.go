// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"

	"github.com/danielhkuo/hearthstone-tracker/models"
)

// Memory keeps encoded snapshots in a map, so callers never share slices
// with the store. Used for offline mode and tests.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]document
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]document)}
}

func (m *Memory) Load(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, false, err
	}

	m.mu.RLock()
	doc, ok := m.docs[userID]
	m.mu.RUnlock()
	if !ok {
		return models.Snapshot{}, false, nil
	}

	snap, err := decode(doc)
	if err != nil {
		return models.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (m *Memory) Save(ctx context.Context, userID string, snap models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := encode(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.docs[userID] = doc
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
