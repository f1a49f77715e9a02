package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	adminhandler "trilha/internal/admin/handler"
	adminservice "trilha/internal/admin/service"
	"trilha/internal/admin/session"
	"trilha/internal/landing"
	landinghandler "trilha/internal/landing/handler"
	"trilha/internal/platform/config"
	"trilha/internal/platform/httpserver"
	"trilha/internal/platform/logger"
	"trilha/internal/platform/metrics"
	"trilha/internal/platform/postgres"
	platformredis "trilha/internal/platform/redis"
	registrationhandler "trilha/internal/registration/handler"
	registrationservice "trilha/internal/registration/service"
	"trilha/internal/registration/store"
	httptransport "trilha/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Store: Postgres when configured, in-memory for local development.
	var regStore store.Store
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		regStore = store.NewPostgres(db, cfg.Capacity)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		regStore = store.NewInMemory(cfg.Capacity)
	}

	// Revocation list: Redis when configured, in-memory otherwise.
	var revocations session.RevocationList
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocations = session.NewRedisRevocationList(redisClient.Client)
	} else {
		revocations = session.NewInMemoryRevocationList()
	}

	sessions := session.NewManager(cfg.JWTSigningKey, cfg.SessionTTL, revocations)

	intake := registrationservice.New(regStore,
		registrationservice.WithLogger(log),
		registrationservice.WithMetrics(m),
	)
	admin := adminservice.New(regStore, sessions, cfg.AdminPassphraseHash,
		adminservice.WithLogger(log),
		adminservice.WithMetrics(m),
	)

	poller := landing.NewPoller(regStore, cfg.Capacity, cfg.CountPollInterval, log)
	poller.Refresh(ctx)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:  log,
		Metrics: m,
		Registration: registrationhandler.New(intake, log),
		Landing: landinghandler.New(
			landing.Countdown{Target: cfg.EventStart},
			landing.Gate{Deadline: cfg.RegistrationDeadline},
			poller,
		),
		Admin:          adminhandler.New(admin, log),
		Sessions:       sessions,
		AllowedOrigins: splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting trilha server", "addr", cfg.Addr, "capacity", cfg.Capacity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := poller.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func splitOrigins(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
