package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finsight-vn/finsight/internal/app"
	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/narrative"
	"github.com/finsight-vn/finsight/internal/observability"
	"github.com/finsight-vn/finsight/internal/platform/cache"
	"github.com/finsight-vn/finsight/internal/platform/db"
	"github.com/finsight-vn/finsight/internal/ratio"
	"github.com/finsight-vn/finsight/internal/refdata"
	"github.com/finsight-vn/finsight/internal/statement"
	"github.com/finsight-vn/finsight/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	rule, err := cfg.HistoricalRule()
	if err != nil {
		logger.Error("parse historical rule", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	refRepo := refdata.NewRepository(dbpool)
	refCache := refdata.NewCache(redisClient, cfg.RefCacheTTL)
	refService := refdata.NewService(refRepo, refCache, logger)
	go func() {
		if err := refCache.ListenForInvalidation(ctx, ""); err != nil && ctx.Err() == nil {
			logger.Warn("cache invalidation listener stopped", slog.Any("error", err))
		}
	}()

	factRepo := facts.NewRepository(dbpool)
	factMetrics := facts.NewMetrics(metrics.Registerer())
	fetcher := facts.NewFetcher(factRepo, cfg.FactPageSize, factMetrics, logger)

	statementService := statement.NewService(refService, fetcher, rule, logger)
	statementHandler := statement.NewHandler(logger, statementService)

	ratioService := ratio.NewService(refService, fetcher, rule, logger)
	ratioHandler := ratio.NewHandler(logger, ratioService)

	metaHandler := refdata.NewHandler(logger, refService)

	var narrativeHandler *narrative.Handler
	if cfg.GeminiAPIKey != "" {
		generator, err := narrative.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("init narrative generator", slog.Any("error", err))
			os.Exit(1)
		}
		narrativeService := narrative.NewService(statementService, generator, logger)
		narrativeHandler = narrative.NewHandler(logger, narrativeService)
	} else {
		logger.Info("GEMINI_API_KEY not set, commentary endpoint disabled")
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		MetaHandler:      metaHandler,
		StatementHandler: statementHandler,
		RatioHandler:     ratioHandler,
		NarrativeHandler: narrativeHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
