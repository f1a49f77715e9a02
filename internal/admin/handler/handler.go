// Package handler exposes the admin management view over HTTP. Every route
// except login sits behind the session middleware.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"trilha/internal/admin/session"
	adminservice "trilha/internal/admin/service"
	"trilha/internal/platform/middleware"
	"trilha/internal/registration/models"
	"trilha/internal/transport/http/shared"
	dErrors "trilha/pkg/domain-errors"
)

// Service defines the admin operations the handler delegates to.
type Service interface {
	Login(ctx context.Context, passphrase string) (session.Token, error)
	Logout(ctx context.Context, token string) error
	List(ctx context.Context) ([]*models.Registration, error)
	Update(ctx context.Context, id int64, req models.SubmitRequest) (*models.Registration, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context) ([]byte, error)
}

// Handler handles admin endpoints.
type Handler struct {
	admin  Service
	logger *slog.Logger
	now    func() time.Time
}

type Option func(h *Handler)

// WithClock overrides the time source used for the export filename.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New creates an admin Handler.
func New(admin Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{admin: admin, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the admin routes. requireSession guards everything except
// login.
func (h *Handler) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Post("/admin/login", h.handleLogin)
	r.Group(func(pr chi.Router) {
		pr.Use(requireSession)
		pr.Post("/admin/logout", h.handleLogout)
		pr.Get("/admin/inscritos", h.handleList)
		pr.Get("/admin/inscritos/export", h.handleExport)
		pr.Put("/admin/inscritos/{id}", h.handleUpdate)
		pr.Delete("/admin/inscritos/{id}", h.handleDelete)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	token, err := h.admin.Login(ctx, req.Passphrase)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, token)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.admin.Logout(r.Context(), token); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.admin.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if records == nil {
		records = []*models.Registration{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"total":     len(records),
		"inscritos": records,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.admin.Update(r.Context(), id, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	if err := h.admin.Delete(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	blob, err := h.admin.Export(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+adminservice.ExportFilename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid registration id"))
		return 0, false
	}
	return id, true
}
