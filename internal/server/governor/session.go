// Package governor implements login failure-handling policy: the per-session
// attempt counter with lockout, and the coarser request rate limiter.
package governor

import "sync"

// SessionState is the ephemeral login-attempt counter for one browser
// session. The counter only grows on failed checks; it returns to zero only
// through an explicit unlock, never automatically.
type SessionState struct {
	Attempts int
}

// Store keeps session states in memory, keyed by the browser-session ID.
// The lockout is deliberately session-scoped, not account-scoped: a fresh
// session gets a fresh counter. Stricter account-scoped throttling would be
// a behavior change, not a bug fix.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*SessionState
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*SessionState)}
}

// RecordFailure increments the session's failed-attempt counter and returns
// the new count. State is allocated on the first failure only, so sessions
// that never fail a check never occupy the map.
func (s *Store) RecordFailure(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		state = &SessionState{}
		s.sessions[sessionID] = state
	}
	state.Attempts++
	return state.Attempts
}

// IsLockedOut reports whether the session has reached the lockout threshold.
// A locked session stays locked on any further attempt. Reading never
// allocates state.
func (s *Store) IsLockedOut(sessionID string, threshold int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	return ok && state.Attempts >= threshold
}

// Reset is the explicit unlock: the session's state is dropped entirely, so
// it reopens with a fresh counter and stops occupying the map.
func (s *Store) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}
