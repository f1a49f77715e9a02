package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"trilha/internal/transport/http/shared"
	dErrors "trilha/pkg/domain-errors"
)

// SessionValidator checks an admin session token: signature, expiry and
// revocation. The admin session service implements it.
type SessionValidator interface {
	Validate(ctx context.Context, token string) error
}

// RequireSession gates admin routes behind a valid Bearer token. Unlike a
// client-held login flag, the token is re-verified on every operation.
func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}
			if err := validator.Validate(r.Context(), token); err != nil {
				logger.WarnContext(r.Context(), "admin session rejected",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
