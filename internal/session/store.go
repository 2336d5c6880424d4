package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds live sessions in memory. It is safe for concurrent use.
// Transitions run outside the lock, so a slow analysis in one session never
// blocks another.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create starts a new session with a random ID.
func (s *Store) Create() Session {
	sess := New(uuid.NewString(), s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session with the given ID.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Submit applies the Submit transition to the stored session.
func (s *Store) Submit(id string, up Upload, analyse AnalyseFunc) (Session, error) {
	return s.update(id, func(cur Session, now time.Time) (Session, error) {
		return Submit(cur, up, analyse, now)
	})
}

// Reset applies the Reset transition to the stored session.
func (s *Store) Reset(id string) (Session, error) {
	return s.update(id, func(cur Session, now time.Time) (Session, error) {
		return Reset(cur, now), nil
	})
}

// update runs fn against a snapshot and stores the result if nobody else
// changed the session in the meantime.
func (s *Store) update(id string, fn func(Session, time.Time) (Session, error)) (Session, error) {
	snapshot, err := s.Get(id)
	if err != nil {
		return Session{}, err
	}

	next, err := fn(snapshot, s.now())
	if err != nil {
		return snapshot, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if cur.Version != snapshot.Version {
		return cur, fmt.Errorf("%w: session %s changed concurrently", ErrInvalidTransition, id)
	}
	next.Version = cur.Version + 1
	// Assigning replaces the map key as well as the value, so key by the
	// stored ID rather than the caller's string, which may share a reused buffer.
	s.sessions[cur.ID] = next
	return next, nil
}

// Delete removes a session and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune removes sessions idle for longer than maxAge and returns how many were removed.
func (s *Store) Prune(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
