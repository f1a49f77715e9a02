// Package httptransport assembles the chi router: middleware chain, public
// routes, admin routes and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "trilha/internal/admin/handler"
	landinghandler "trilha/internal/landing/handler"
	"trilha/internal/platform/metrics"
	"trilha/internal/platform/middleware"
	registrationhandler "trilha/internal/registration/handler"
)

// Deps collects everything the router mounts.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Registration *registrationhandler.Handler
	Landing      *landinghandler.Handler
	Admin        *adminhandler.Handler
	Sessions     middleware.SessionValidator

	// AllowedOrigins for CORS; the pages are served from another origin.
	AllowedOrigins []string
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	r.Use(middleware.ContentTypeJSON)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	d.Landing.Register(r)
	d.Registration.Register(r)
	d.Admin.Register(r, middleware.RequireSession(d.Sessions, d.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
