package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"benefind/internal/eligibility/cache"
	"benefind/internal/eligibility/handler"
	"benefind/internal/eligibility/loader"
	"benefind/internal/eligibility/metrics"
	"benefind/internal/eligibility/ports"
	"benefind/internal/eligibility/service"
	"benefind/internal/eligibility/store/rules"
	"benefind/internal/fpl"
	"benefind/internal/platform/config"
	"benefind/internal/platform/httpserver"
	"benefind/internal/platform/logger"
	"benefind/internal/platform/middleware"
	platformredis "benefind/internal/platform/redis"
	"benefind/pkg/domain"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	supported, err := parseJurisdictions(cfg.SupportedJurisdictions)
	if err != nil {
		return err
	}

	var (
		ruleRepo    ports.RuleRepository
		ruleSetRepo ports.RuleSetRepository
		fplRepo     fpl.Repository
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return err
		}

		pgRules := rules.NewPostgres(pool)
		ruleRepo, ruleSetRepo = pgRules, pgRules
		fplRepo = fpl.NewPostgres(pool)
		log.Info("using postgres rule catalogue")
	} else {
		memRules := rules.NewMemoryStore()
		rules.SeedDevCatalogue(memRules)
		ruleRepo, ruleSetRepo = memRules, memRules

		memFPL := fpl.NewMemoryStore()
		fpl.SeedDevTable(memFPL)
		fplRepo = memFPL
		log.Warn("no postgres URL configured, using seeded in-memory stores")
	}

	var ruleCache cache.RuleCache = cache.NewMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		ruleCache = cache.NewRedis(redisClient.Client, cache.WithTTL(cfg.Redis.CacheTTL))
		log.Info("using redis rule cache", "ttl", cfg.Redis.CacheTTL)
	}

	m := metrics.New()

	ruleLoader := loader.New(ruleRepo, ruleCache, supported,
		loader.WithLogger(log),
		loader.WithMetrics(m),
	)
	svc := service.New(ruleSetRepo, ruleLoader,
		service.WithLogger(log),
		service.WithMetrics(m),
	)
	calculator := fpl.NewCalculator(fplRepo)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.Recoverer)

	handler.New(svc, ruleLoader, calculator, log).Register(router)
	router.Get("/healthz", handleHealth(redisClient))
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting benefind server", "addr", cfg.Addr, "jurisdictions", cfg.SupportedJurisdictions)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseJurisdictions(codes []string) ([]domain.JurisdictionCode, error) {
	out := make([]domain.JurisdictionCode, 0, len(codes))
	for _, raw := range codes {
		code, err := domain.ParseJurisdictionCode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}

func handleHealth(redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
