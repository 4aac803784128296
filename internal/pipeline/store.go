package pipeline

import (
	"log/slog"
	"sync"
	"time"
)

// Store holds live session state keyed by session id. Sessions are created
// lazily on first access and removed by Remove or the cleanup sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	logger   *slog.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*State),
		logger:   logger.With("system", "sessions"),
	}
}

// Get returns the state for a session, creating it if absent.
func (s *Store) Get(sessionID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.sessions[sessionID]; ok {
		return st
	}

	st := newState(sessionID, time.Now().UTC())
	s.sessions[sessionID] = st
	s.logger.Debug("session state created", "session_id", sessionID)
	return st
}

// Find returns the state for a session without creating it.
func (s *Store) Find(sessionID string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[sessionID]
	return st, ok
}

// Reset clears the session's stage results and document content. The state
// is created first if absent.
func (s *Store) Reset(sessionID string) *State {
	st := s.Get(sessionID)
	st.Reset()
	s.logger.Info("session state reset", "session_id", sessionID)
	return st
}

// Remove drops the session from the store.
func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Stale returns ids of sessions that have not changed within maxAge.
func (s *Store) Stale(maxAge time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	stale := make([]string, 0)

	for id, st := range s.sessions {
		if st.Age(now) > maxAge {
			stale = append(stale, id)
		}
	}

	return stale
}
