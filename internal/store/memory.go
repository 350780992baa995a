// internal/store/memory.go
//
// In-memory registry of live sessions.
//
// Characteristics:
//   - Stores *session.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sessions idle longer than the configured timeout are closed and evicted
//     by Sweep (run periodically by Run).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/tally/internal/session"
)

// ErrNotFound is returned by Get for unknown or evicted IDs.
var ErrNotFound = errors.New("store: session not found")

// Store defines the registry interface for live sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session is unknown.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete closes and removes a session. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error
}

// Memory is an in-memory map-based Store implementation.
type Memory struct {
	mu       sync.RWMutex                // guards sessions
	sessions map[string]*session.Session // keyed by Session.ID
	idle     time.Duration
}

// NewMemoryStore constructs a new in-memory Store. A non-positive idle
// timeout disables eviction.
func NewMemoryStore(idle time.Duration) *Memory {
	return &Memory{sessions: make(map[string]*session.Session), idle: idle}
}

// Save adds or updates the session in the map.
func (m *Memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[s.ID()]; ok && old != s {
		old.Close()
	}
	m.sessions[s.ID()] = s
	return nil
}

// Get looks up a session by ID.
func (m *Memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Delete closes and forgets a session.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return nil
}

// Len reports the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle since before now-idle that have no
// subscribers. It returns the number evicted.
func (m *Memory) Sweep(now time.Time) int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := now.Add(-m.idle)

	m.mu.Lock()
	var stale []*session.Session
	for id, s := range m.sessions {
		if s.Subscribers() == 0 && s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
		log.Debug().Str("round", s.ID()).Msg("evicted idle session")
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if m.idle <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Sweep(now); n > 0 {
				log.Info().Int("evicted", n).Int("live", m.Len()).Msg("session sweep")
			}
		}
	}
}

// NewID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func NewID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
