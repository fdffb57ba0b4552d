package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore tracks which sessions are live. A token only verifies
// while its session is tracked, which makes sign-out take effect
// immediately instead of waiting for token expiry.
type SessionStore interface {
	TrackSession(ctx context.Context, sessionID string, ttl time.Duration) error
	RevokeSession(ctx context.Context, sessionID string) error
	IsSessionActive(ctx context.Context, sessionID string) (bool, error)
}

// MemorySessions is an in-process SessionStore used when no Redis is
// configured (single-instance development) and in tests.
type MemorySessions struct {
	mu       sync.RWMutex
	deadline map[string]time.Time
}

// NewMemorySessions creates an empty in-memory session store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{deadline: make(map[string]time.Time)}
}

// TrackSession marks the session active until now+ttl.
func (m *MemorySessions) TrackSession(_ context.Context, sessionID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline[sessionID] = time.Now().Add(ttl)
	return nil
}

// RevokeSession removes the session.
func (m *MemorySessions) RevokeSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deadline, sessionID)
	return nil
}

// IsSessionActive reports whether the session is tracked and unexpired.
func (m *MemorySessions) IsSessionActive(_ context.Context, sessionID string) (bool, error) {
	m.mu.RLock()
	deadline, ok := m.deadline[sessionID]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		m.mu.Lock()
		delete(m.deadline, sessionID)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}
