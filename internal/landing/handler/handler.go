// Package handler serves the public status endpoint the landing page and the
// registration form poll before rendering.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trilha/internal/landing"
	"trilha/internal/transport/http/shared"
)

// StatusResponse is everything the public pages need in one round trip.
type StatusResponse struct {
	RegistrationsOpen bool              `json:"registrations_open"`
	SoldOut           bool              `json:"sold_out"`
	Count             int               `json:"count"`
	SpotsLeft         int               `json:"spots_left"`
	Countdown         landing.Remaining `json:"countdown"`
}

// Handler answers status queries from the poller's cache and pure time math.
type Handler struct {
	countdown landing.Countdown
	gate      landing.Gate
	poller    *landing.Poller
	now       func() time.Time
}

type Option func(h *Handler)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New creates a status Handler.
func New(countdown landing.Countdown, gate landing.Gate, poller *landing.Poller, opts ...Option) *Handler {
	h := &Handler{
		countdown: countdown,
		gate:      gate,
		poller:    poller,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the public routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/status", h.handleStatus)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	shared.WriteJSON(w, http.StatusOK, StatusResponse{
		RegistrationsOpen: h.gate.RegistrationsOpen(now),
		SoldOut:           h.poller.SoldOut(),
		Count:             h.poller.Count(),
		SpotsLeft:         h.poller.SpotsLeft(),
		Countdown:         h.countdown.Until(now),
	})
}
