package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"epiaudit/internal/aggregation"
	aggregationhandler "epiaudit/internal/aggregation/handler"
	aggregationmetrics "epiaudit/internal/aggregation/metrics"
	"epiaudit/internal/aggregation/store/summaries"
	"epiaudit/internal/geography/store/entities"
	"epiaudit/internal/platform/config"
	"epiaudit/internal/platform/httpserver"
	"epiaudit/internal/platform/logger"
	"epiaudit/internal/platform/middleware"
	"epiaudit/internal/platform/postgres"
	platformredis "epiaudit/internal/platform/redis"
	"epiaudit/internal/record"
	recordhandler "epiaudit/internal/record/handler"
	"epiaudit/internal/scoring"
	scoringhandler "epiaudit/internal/scoring/handler"
	scoringmetrics "epiaudit/internal/scoring/metrics"
	"epiaudit/internal/scoring/store/scores"
	httptransport "epiaudit/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Error("schema setup failed", "error", err.Error())
			os.Exit(1)
		}
		cancel()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores: Postgres in deployment, memory fallbacks for local runs
	// without a database.
	var (
		recordStore    record.Store
		breakdownStore record.BreakdownStore
		scoreStore     scores.Store
		entityStore    entities.Store
		summaryStore   summaries.Store
	)
	if db != nil {
		pgRecords := record.NewPostgres(db)
		recordStore = pgRecords
		breakdownStore = pgRecords
		scoreStore = scores.NewPostgres(db)
		entityStore = entities.NewPostgres(db)
		summaryStore = summaries.NewPostgres(db)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		memRecords := record.NewMemory()
		recordStore = memRecords
		breakdownStore = memRecords
		scoreStore = scores.NewMemory()
		entityStore = entities.NewMemory()
		summaryStore = summaries.NewMemory()
	}

	if redisClient != nil {
		cached, err := entities.NewCache(entityStore, redisClient, config.GeographyCacheTTL,
			entities.WithCacheLogger(log))
		if err != nil {
			log.Error("geography cache setup failed", "error", err.Error())
			os.Exit(1)
		}
		entityStore = cached
	}

	scoringSvc := scoring.NewService(recordStore, scoreStore,
		scoring.WithLogger(log),
		scoring.WithMetrics(scoringmetrics.New()),
	)
	aggregationSvc := aggregation.NewService(recordStore, scoreStore, entityStore, summaryStore,
		aggregation.WithLogger(log),
		aggregation.WithMetrics(aggregationmetrics.New()),
	)

	var limiter middleware.RequestLimiter
	if cfg.RateLimitPerMinute > 0 {
		if redisClient != nil {
			limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
		} else {
			limiter = middleware.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
		}
	}

	router := httptransport.NewRouter(log, limiter,
		scoringhandler.New(scoringSvc, log),
		aggregationhandler.New(aggregationSvc, log),
		recordhandler.New(breakdownStore, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting epiaudit", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
