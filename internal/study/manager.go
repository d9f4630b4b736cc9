package study

import (
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live sessions by ID. Sessions are in-memory only; a
// discarded session leaves no trace beyond the ratings it already wrote
// through to the store.
type Manager struct {
	mu       sync.Mutex
	store    CardStore
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager backed by the given store.
func NewManager(store CardStore) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Begin creates a session for the deck, begins it, and registers it.
func (m *Manager) Begin(deckID uuid.UUID, order Order) (*Session, error) {
	session := NewSession(m.store, deckID, order)
	if err := session.Begin(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID()] = session
	return session, nil
}

// Get returns the live session with the given ID.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Discard drops the session. Ratings already committed stay committed;
// discarding an unknown ID is a no-op.
func (m *Manager) Discard(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
