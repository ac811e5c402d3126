package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	alerthandler "lifeline/internal/alert/handler"
	alertservice "lifeline/internal/alert/service"
	alertstore "lifeline/internal/alert/store"
	approvalhandler "lifeline/internal/approval/handler"
	approvalservice "lifeline/internal/approval/service"
	approvalstore "lifeline/internal/approval/store"
	inventoryhandler "lifeline/internal/inventory/handler"
	inventoryservice "lifeline/internal/inventory/service"
	inventorystore "lifeline/internal/inventory/store"
	jwttoken "lifeline/internal/jwt_token"
	"lifeline/internal/platform/config"
	"lifeline/internal/platform/httpserver"
	"lifeline/internal/platform/logger"
	"lifeline/internal/platform/metrics"
	"lifeline/internal/platform/postgres"
	"lifeline/internal/platform/redis"
	posthandler "lifeline/internal/post/handler"
	postservice "lifeline/internal/post/service"
	poststore "lifeline/internal/post/store"
	userhandler "lifeline/internal/user/handler"
	userservice "lifeline/internal/user/service"
	userstore "lifeline/internal/user/store"
	"lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/audit/publisher"
	auditmemory "lifeline/pkg/platform/audit/store/memory"
	auditpostgres "lifeline/pkg/platform/audit/store/postgres"
)

// main keeps the server lifecycle small; the dependency graph lives in
// assemble so it stays testable. Business rules live in the internal
// service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	router, cleanup, err := assemble(context.Background(), cfg, log, m)
	if err != nil {
		log.Error("failed to assemble server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting lifeline server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// assemble wires stores, services, and handlers into the root router. The
// returned cleanup releases everything the graph opened, in reverse order.
func assemble(ctx context.Context, cfg config.Server, log *slog.Logger, m *metrics.Metrics) (chi.Router, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Every store runs on Postgres when DATABASE_URL is set, in-memory
	// otherwise. The in-memory mode is what a field deployment without a
	// database uses; it is never mixed with Postgres so no record silently
	// loses durability.
	var (
		samples   inventorystore.Store = inventorystore.NewInMemory()
		approvals approvalstore.Store  = approvalstore.NewInMemory()
		users     userstore.Store      = userstore.NewInMemory()
		alerts    alertstore.Store     = alertstore.NewInMemory()
		posts     poststore.Store      = poststore.NewInMemory()
		auditLog  audit.Store          = auditmemory.NewInMemoryStore()
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { _ = db.Close() })
		samples = inventorystore.NewPostgres(db)
		approvals = approvalstore.NewPostgres(db)
		users = userstore.NewPostgres(db)
		alerts = alertstore.NewPostgres(db)
		posts = poststore.NewPostgres(db)
		auditLog = auditpostgres.New(db)
		log.Info("using postgres stores")
	} else {
		log.Warn("DATABASE_URL not set; using in-memory stores")
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if redisClient != nil {
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
	}

	auditor := publisher.NewPublisher(auditLog,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	cleanups = append(cleanups, auditor.Close)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	inventorySvc := inventoryservice.New(samples, m)
	userSvc := userservice.New(users, inventorySvc, jwtService, auditor, log, m, cfg.TokenTTL)
	approvalSvc := approvalservice.New(approvals, users, inventorySvc, auditor, log, m)
	alertSvc := alertservice.New(alerts, redisClient, auditor, log, m)
	postSvc := postservice.New(posts, users, log)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	userhandler.New(userSvc, log, m, validator).Register(router)
	inventoryhandler.New(inventorySvc, log, m, validator).Register(router)
	approvalhandler.New(approvalSvc, log, m, validator).Register(router)
	alerthandler.New(alertSvc, log, m, validator).Register(router)
	posthandler.New(postSvc, log, m, validator).Register(router)

	return router, cleanup, nil
}
