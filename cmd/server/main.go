package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/mentalize/internal/api"
	"github.com/Harshitk-cp/mentalize/internal/buildconfig"
	"github.com/Harshitk-cp/mentalize/internal/config"
	"github.com/Harshitk-cp/mentalize/internal/scenario"
	"github.com/Harshitk-cp/mentalize/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	_ = config.Load()

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(config.ZapLevel())
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := scenario.Default(config.ScenarioDir())
	if err != nil {
		logger.Fatal("failed to load scenarios", zap.String("dir", config.ScenarioDir()), zap.Error(err))
	}
	logger.Info("scenarios loaded", zap.Int("count", catalog.Len()))

	var pool *pgxpool.Pool
	if dbURL := config.DatabaseURL(); dbURL != "" {
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		if err := store.NewRunStore(pool).EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare run history", zap.Error(err))
		}
		logger.Info("connected to database, run history enabled")
	} else {
		logger.Info("DATABASE_URL not set, run history disabled")
	}

	app := api.NewApp(pool, catalog, logger)
	go app.Run(ctx)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
