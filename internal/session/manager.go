package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/everforgeworks/zen-fisher/internal/game"
)

const maxPlayerIDLen = 64

// ErrInvalidPlayer is returned for empty or oversized player ids.
var ErrInvalidPlayer = errors.New("invalid player id")

// Manager keeps at most one running Session per player. A player whose
// session is still saving on its way out cannot be reopened until that
// final save has finished.
type Manager struct {
	mu       sync.Mutex
	opts     Options
	sessions map[string]*Session
	closing  map[string]chan struct{}
}

// PlayerID trims a client-supplied player id and checks its length.
func PlayerID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxPlayerIDLen {
		return "", ErrInvalidPlayer
	}
	return id, nil
}

func NewManager(opts Options) *Manager {
	return &Manager{
		opts:     opts,
		sessions: make(map[string]*Session),
		closing:  make(map[string]chan struct{}),
	}
}

// SetCatalog replaces the catalog used by sessions opened from now on.
// Running sessions keep the catalog they started with.
func (m *Manager) SetCatalog(cat *game.Catalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.Catalog = cat
}

// Catalog returns the catalog new sessions will use.
func (m *Manager) Catalog() *game.Catalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.Catalog
}

// Get returns the player's session, opening it on first use. When the
// player is being logged out, Get waits for the final save before loading.
func (m *Manager) Get(ctx context.Context, playerID string) (*Session, error) {
	playerID, err := PlayerID(playerID)
	if err != nil {
		return nil, err
	}

	for {
		m.mu.Lock()
		if s, ok := m.sessions[playerID]; ok {
			m.mu.Unlock()
			return s, nil
		}
		done, ok := m.closing[playerID]
		if !ok {
			break
		}
		m.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	defer m.mu.Unlock()

	s, err := Open(ctx, playerID, m.opts)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", playerID, err)
	}
	m.sessions[playerID] = s
	log.Printf("SESSION: %s online (%d active)", playerID, len(m.sessions))
	return s, nil
}

// Logout closes the player's session, saving it first.
func (m *Manager) Logout(playerID string) error {
	playerID = strings.TrimSpace(playerID)

	m.mu.Lock()
	s, ok := m.sessions[playerID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	done := m.release(playerID)
	m.mu.Unlock()

	log.Printf("SESSION: %s offline", playerID)
	err := s.Close()
	m.finish(playerID, done)
	return err
}

// CloseAll saves and stops every session.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := make(map[string]*Session, len(m.sessions))
	pending := make(map[string]chan struct{}, len(m.sessions))
	for id, s := range m.sessions {
		sessions[id] = s
		pending[id] = m.release(id)
	}
	m.mu.Unlock()

	var errs []error
	for id, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
		m.finish(id, pending[id])
	}
	return errors.Join(errs...)
}

// release moves a running session to the closing set. Callers hold m.mu.
func (m *Manager) release(playerID string) chan struct{} {
	delete(m.sessions, playerID)
	done := make(chan struct{})
	m.closing[playerID] = done
	return done
}

func (m *Manager) finish(playerID string, done chan struct{}) {
	m.mu.Lock()
	if m.closing[playerID] == done {
		delete(m.closing, playerID)
	}
	m.mu.Unlock()
	close(done)
}

// Len is the number of running sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
