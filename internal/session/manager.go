package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager keeps independent sessions keyed by id. Nothing is shared between
// sessions except the read-only Deps.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
}

func NewManager(deps Deps) *Manager {
	return &Manager{sessions: make(map[string]*Session), deps: deps.withDefaults()}
}

// Create starts a session under a fresh random id.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := New(id, m.deps)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it on first use.
func (m *Manager) GetOrCreate(id string) *Session {
	if s, ok := m.Get(id); ok {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := New(id, m.deps)
	m.sessions[id] = s
	return s
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepIdle drops sessions untouched for longer than maxIdle and returns how
// many were removed.
func (m *Manager) SweepIdle(maxIdle time.Duration) int {
	cutoff := m.deps.Clock().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.deps.Logger.Info("idle sessions swept", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}
