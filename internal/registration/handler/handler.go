// Package handler is the HTTP surface of registration intake.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trilha/internal/platform/middleware"
	"trilha/internal/registration/models"
	"trilha/internal/transport/http/shared"
	dErrors "trilha/pkg/domain-errors"
)

// Service defines the interface for registration intake.
type Service interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.Registration, error)
}

// Handler handles the public registration endpoint.
type Handler struct {
	intake Service
	logger *slog.Logger
}

// New creates a registration Handler.
func New(intake Service, logger *slog.Logger) *Handler {
	return &Handler{intake: intake, logger: logger}
}

// Register mounts the intake route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/inscricao", h.handleSubmit)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid submission body",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reg, err := h.intake.Submit(ctx, req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "submission failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to save registration"))
			return
		}
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission accepted",
		"request_id", requestID,
		"id", reg.ID,
	)
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
