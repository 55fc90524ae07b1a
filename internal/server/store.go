package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ha1tch/reseau/pkg/metrics"
	"github.com/ha1tch/reseau/pkg/reseau"
)

// Store holds the live sessions by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*reseau.Session
	metrics  *metrics.Registry
}

// NewStore returns an empty store.
func NewStore(reg *metrics.Registry) *Store {
	return &Store{
		sessions: make(map[string]*reseau.Session),
		metrics:  reg,
	}
}

// Add registers s under a fresh id.
func (st *Store) Add(s *reseau.Session) string {
	id := uuid.New().String()

	st.mu.Lock()
	st.sessions[id] = s
	n := len(st.sessions)
	st.mu.Unlock()

	st.metrics.SetSessions(n)
	return id
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*reseau.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete closes and forgets a session. It reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	st.metrics.SetSessions(n)
	return true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CloseAll closes every session.
func (st *Store) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*reseau.Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	st.metrics.SetSessions(0)
}
