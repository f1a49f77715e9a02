package session

import (
	"context"
	"sync"
	"time"
)

// InMemoryRevocationList keeps revoked jtis in process memory. Suitable for a
// single instance and for tests; use the Redis list when running more than
// one replica.
type InMemoryRevocationList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   func() time.Time
}

// NewInMemoryRevocationList constructs an empty list.
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
}

func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.clock().Add(ttl)
	return nil
}

func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.RLock()
	expiresAt, ok := l.revoked[jti]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if l.clock().After(expiresAt) {
		// Lazy cleanup: the token expired on its own, the entry is dead weight.
		l.mu.Lock()
		delete(l.revoked, jti)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
