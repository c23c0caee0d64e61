package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one browser session of the storefront.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager issues and validates storefront session ids. Sessions live in
// memory: a restart invalidates them, which only costs guests their session
// binding (guest carts survive in their own storage keyed by session id).
type Manager struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]Session
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Start creates a new session and returns it.
func (m *Manager) Start() Session {
	now := time.Now()
	s := Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Validate reports whether the session id names a live session, extending
// its expiry on use.
func (m *Manager) Validate(id string) (Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if time.Now().After(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return Session{}, false
	}
	s.ExpiresAt = time.Now().Add(m.ttl)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, true
}

// End drops the session.
func (m *Manager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
