// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string

	// AdminPassphraseHash is the bcrypt hash of the shared admin passphrase.
	AdminPassphraseHash string
	JWTSigningKey       string
	SessionTTL          time.Duration

	// Capacity is the single authoritative ceiling on registrations. The
	// store refuses inserts at the ceiling and the landing flow reports
	// sold-out from the same value.
	Capacity int

	// EventStart is the countdown target; RegistrationDeadline is the cutoff
	// after which the landing flow reports registrations closed.
	EventStart           time.Time
	RegistrationDeadline time.Time

	// CountPollInterval controls how often the landing poller refreshes the
	// cached registration count.
	CountPollInterval time.Duration
}

const (
	defaultAddr       = ":8080"
	defaultCapacity   = 80
	defaultSessionTTL = 30 * time.Minute
	defaultPoll       = 15 * time.Second

	// Dev fallback when no passphrase env is set. Override in production.
	defaultPassphrase = "trilha-dev"
)

// FromEnv reads configuration from the environment, applying development
// defaults where a value is optional.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:              envOr("TRILHA_ADDR", defaultAddr),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSigningKey:     envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:        defaultSessionTTL,
		Capacity:          defaultCapacity,
		CountPollInterval: defaultPoll,
	}

	// Prefer a pre-computed hash; fall back to hashing a plaintext passphrase
	// at startup so development setups never ship a client-held literal.
	cfg.AdminPassphraseHash = os.Getenv("ADMIN_PASSPHRASE_HASH")
	if cfg.AdminPassphraseHash == "" {
		pass := envOr("ADMIN_PASSPHRASE", defaultPassphrase)
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
		if err != nil {
			return Config{}, fmt.Errorf("hash admin passphrase: %w", err)
		}
		cfg.AdminPassphraseHash = string(hash)
	}

	if v := os.Getenv("CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid CAPACITY %q", v)
		}
		cfg.Capacity = n
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = d
	}

	if v := os.Getenv("COUNT_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COUNT_POLL_INTERVAL %q: %w", v, err)
		}
		cfg.CountPollInterval = d
	}

	var err error
	cfg.EventStart, err = timeEnv("EVENT_START", time.Date(2026, time.January, 18, 6, 30, 0, 0, time.Local))
	if err != nil {
		return Config{}, err
	}
	cfg.RegistrationDeadline, err = timeEnv("REGISTRATION_DEADLINE", time.Date(2026, time.January, 17, 0, 0, 0, 0, time.Local))
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func timeEnv(key string, fallback time.Time) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return t, nil
}
