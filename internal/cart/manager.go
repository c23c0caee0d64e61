package cart

import (
	"log"
	"sync"
)

// Session bundles the cart engine for one storefront session.
type Session struct {
	Store *Store
	Sync  *Synchronizer
}

// Manager owns one cart engine per storefront session id, creating them
// lazily on first use.
type Manager struct {
	remote RemoteStore
	guest  GuestStore
	feed   Feed
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(remote RemoteStore, guest GuestStore, feed Feed, logger *log.Logger) *Manager {
	return &Manager{
		remote:   remote,
		guest:    guest,
		feed:     feed,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Session returns the engine for the given session id, creating it if
// needed.
func (m *Manager) Session(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		return s
	}
	store := NewStore(m.remote, m.guest, sessionID, m.logger)
	s := &Session{
		Store: store,
		Sync:  NewSynchronizer(store, m.remote, m.guest, m.feed, m.logger),
	}
	m.sessions[sessionID] = s
	return s
}

// Close tears down all session engines and waits for their pending
// persistence writes.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Sync.Close()
		s.Store.Flush()
	}
}
