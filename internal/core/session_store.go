package core

// session_store.go keeps per-user sessions in memory and expires idle ones.
//
// The sweeper is long-running and context-aware: it sweeps once on start,
// then every interval until the context is cancelled.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore maps session IDs to sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// NewSessionStore creates a store that drops sessions idle for longer than ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session with a random ID.
func (st *SessionStore) Create() *Session {
	sess := NewSession(uuid.NewString())

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	return sess
}

// Get returns the live session for id, or ErrSessionNotFound. A successful
// lookup counts as use and restarts the idle timer.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok || st.expired(sess) {
		return nil, ErrSessionNotFound
	}
	sess.Touch(st.now())
	return sess, nil
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// unknown or expired. created reports whether a new session was made.
func (st *SessionStore) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, err := st.Get(id); err == nil {
			return sess, false
		}
	}
	return st.Create(), true
}

// Len returns the number of stored sessions, expired or not.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if st.expired(sess) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (st *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started", "ttl", st.ttl, "interval", interval)

	st.sweepOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			st.sweepOnce()
		}
	}
}

func (st *SessionStore) sweepOnce() {
	start := time.Now()
	removed := st.Sweep()
	slog.Debug("session sweep completed",
		"sessions_removed", removed,
		"sessions_live", st.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (st *SessionStore) expired(sess *Session) bool {
	return st.now().Sub(sess.LastUsed()) > st.ttl
}
