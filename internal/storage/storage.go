// Package storage defines the persistence gateway for player saves.
//
// A save is an opaque JSON document keyed by player id. The gateway does not
// interpret it; shape changes are handled by the game's save migrator.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound indicates no save exists for the requested player.
var ErrNotFound = errors.New("save not found")

// Gateway loads and stores raw save records.
type Gateway interface {
	Load(ctx context.Context, playerID string) ([]byte, error)
	Save(ctx context.Context, playerID string, record []byte) error
}

// Memory is an in-process Gateway used by tests and throwaway servers.
type Memory struct {
	mu    sync.RWMutex
	saves map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{saves: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, playerID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.saves[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), record...), nil
}

func (m *Memory) Save(ctx context.Context, playerID string, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves[playerID] = append([]byte(nil), record...)
	return nil
}
