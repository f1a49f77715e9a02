// Package session issues and validates admin session tokens. The shared
// passphrase grants a signed, expiring JWT instead of a client-held flag, and
// every admin operation re-verifies the token against the revocation list.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RevocationList records logged-out token IDs until their natural expiry.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Token is an issued admin session.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager signs and verifies session tokens.
type Manager struct {
	signingKey  []byte
	ttl         time.Duration
	revocations RevocationList
	clock       func() time.Time
}

type Option func(m *Manager)

// WithClock sets the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// NewManager constructs a session Manager.
func NewManager(signingKey string, ttl time.Duration, revocations RevocationList, opts ...Option) *Manager {
	m := &Manager{
		signingKey:  []byte(signingKey),
		ttl:         ttl,
		revocations: revocations,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue mints a fresh session token.
func (m *Manager) Issue(_ context.Context) (Token, error) {
	now := m.clock()
	expiresAt := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return Token{}, fmt.Errorf("sign session token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// Validate checks signature, expiry and revocation.
func (m *Manager) Validate(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return fmt.Errorf("session revoked")
	}
	return nil
}

// Revoke blacklists a token's jti until the token would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Sub(m.clock())
	if ttl <= 0 {
		return nil
	}
	return m.revocations.Revoke(ctx, claims.ID, ttl)
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	return claims, nil
}
