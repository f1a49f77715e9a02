// Package service implements the admin management view: passphrase login,
// listing, record edits, deletion and CSV export.
package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"trilha/internal/admin/session"
	"trilha/internal/platform/metrics"
	"trilha/internal/registration/models"
	"trilha/internal/registration/store"
	registration "trilha/internal/registration/service"
	dErrors "trilha/pkg/domain-errors"
	"trilha/pkg/sentinel"
)

// Service orchestrates admin operations over the registration store.
type Service struct {
	store          store.Store
	sessions       *session.Manager
	passphraseHash []byte
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. passphraseHash is the bcrypt hash of the shared
// admin passphrase.
func New(st store.Store, sessions *session.Manager, passphraseHash string, opts ...Option) *Service {
	s := &Service{
		store:          st,
		sessions:       sessions,
		passphraseHash: []byte(passphraseHash),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges the shared passphrase for an expiring session token. There
// is no lockout; a wrong passphrase only costs the caller another attempt.
func (s *Service) Login(ctx context.Context, passphrase string) (session.Token, error) {
	if err := bcrypt.CompareHashAndPassword(s.passphraseHash, []byte(passphrase)); err != nil {
		s.logger.WarnContext(ctx, "admin login rejected")
		return session.Token{}, dErrors.New(dErrors.CodeUnauthorized, "wrong passphrase")
	}
	token, err := s.sessions.Issue(ctx)
	if err != nil {
		return session.Token{}, dErrors.Wrap(dErrors.CodeInternal, "failed to issue session", err)
	}
	s.logger.InfoContext(ctx, "admin session issued", "expires_at", token.ExpiresAt)
	return token, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return dErrors.Wrap(dErrors.CodeUnauthorized, "invalid session token", err)
	}
	return nil
}

// List returns all registrations, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Registration, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load registrations", err)
	}
	return records, nil
}

// Update overwrites the editable fields of a record. Edits run through the
// same normalization, validation and duplicate check as intake, with the
// record being edited excluded from the conflict search, so an edit cannot
// reintroduce an invalid value or a duplicate.
func (s *Service) Update(ctx context.Context, id int64, req models.SubmitRequest) (*models.Registration, error) {
	req.Normalize()
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		return nil, dErrors.NewValidation(fieldErrs)
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load registration", err)
	}

	existing, err := s.store.FindConflict(ctx, req.Email, req.Whatsapp, id)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "duplicate check failed", err)
	}
	if existing != nil {
		return nil, conflictMessage(existing, req.Email, req.Whatsapp)
	}

	updated := req.ToRegistration()
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt

	if err := s.store.Update(ctx, updated); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrDuplicateEmail):
			return nil, dErrors.New(dErrors.CodeConflict, registration.MsgEmailInUse)
		case errors.Is(err, sentinel.ErrDuplicatePhone):
			return nil, dErrors.New(dErrors.CodeConflict, registration.MsgPhoneInUse)
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}

	s.logger.InfoContext(ctx, "registration updated", "id", id)
	return updated, nil
}

// Delete removes a record permanently, immediately freeing a capacity slot.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete registration", err)
	}
	s.logger.InfoContext(ctx, "registration deleted", "id", id)
	return nil
}

// Export builds the CSV blob of the current listing. Zero records is a
// refusal, not an empty file.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	blob, err := BuildCSV(records)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ExportsGenerated.Inc()
	}
	return blob, nil
}

func conflictMessage(existing *models.Registration, email, whatsapp string) error {
	switch {
	case existing.Email == email && existing.Whatsapp == whatsapp:
		return dErrors.New(dErrors.CodeConflict, registration.MsgAlreadyRegistered)
	case existing.Email == email:
		return dErrors.New(dErrors.CodeConflict, registration.MsgEmailInUse)
	default:
		return dErrors.New(dErrors.CodeConflict, registration.MsgPhoneInUse)
	}
}
