// Package service implements registration intake: field validation, the
// duplicate decision table and the capacity-guarded insert.
package service

import (
	"context"
	"errors"
	"log/slog"

	"trilha/internal/platform/metrics"
	"trilha/internal/registration/models"
	"trilha/internal/registration/store"
	dErrors "trilha/pkg/domain-errors"
	"trilha/pkg/sentinel"
)

// Rejection messages surfaced to the form. The both-match case must never
// degrade into one of the single-field variants.
const (
	MsgAlreadyRegistered = "already registered"
	MsgEmailInUse        = "email already in use"
	MsgPhoneInUse        = "phone already in use"
	MsgNoSpotsLeft       = "no spots left"
)

// Service orchestrates registration intake.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
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

// New constructs a Service.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and normalizes a candidate, rejects duplicates per the
// decision table, and persists the record. Exactly one row is inserted on
// success; every rejection path leaves the store untouched.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.Registration, error) {
	req.Normalize()
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		s.reject("validation")
		return nil, dErrors.NewValidation(fieldErrs)
	}

	existing, err := s.store.FindConflict(ctx, req.Email, req.Whatsapp, 0)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "duplicate check failed", err)
	}
	if existing != nil {
		return nil, s.conflictError(existing, req.Email, req.Whatsapp)
	}

	reg := req.ToRegistration()
	if err := s.store.Create(ctx, reg); err != nil {
		// A concurrent submission may win the insert between the check and
		// the write; the store's own enforcement reports it as a sentinel.
		switch {
		case errors.Is(err, sentinel.ErrDuplicateEmail):
			s.reject("email")
			return nil, dErrors.New(dErrors.CodeConflict, MsgEmailInUse)
		case errors.Is(err, sentinel.ErrDuplicatePhone):
			s.reject("phone")
			return nil, dErrors.New(dErrors.CodeConflict, MsgPhoneInUse)
		case errors.Is(err, sentinel.ErrCapacityReached):
			s.reject("capacity")
			return nil, dErrors.New(dErrors.CodeConflict, MsgNoSpotsLeft)
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to save registration", err)
	}

	s.logger.InfoContext(ctx, "registration created",
		"id", reg.ID,
		"email", reg.Email,
	)
	if s.metrics != nil {
		s.metrics.RegistrationsCreated.Inc()
	}
	return reg, nil
}

// conflictError applies the decision table to the single record the OR query
// found. Both fields matching is reported as a full re-registration, not as
// either single-field variant.
func (s *Service) conflictError(existing *models.Registration, email, whatsapp string) error {
	emailMatch := existing.Email == email
	phoneMatch := existing.Whatsapp == whatsapp

	switch {
	case emailMatch && phoneMatch:
		s.reject("already_registered")
		return dErrors.New(dErrors.CodeConflict, MsgAlreadyRegistered)
	case emailMatch:
		s.reject("email")
		return dErrors.New(dErrors.CodeConflict, MsgEmailInUse)
	default:
		s.reject("phone")
		return dErrors.New(dErrors.CodeConflict, MsgPhoneInUse)
	}
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.RegistrationsRejected.WithLabelValues(reason).Inc()
	}
}
