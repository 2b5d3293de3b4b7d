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

	"example.com/event-planner/gateway/internal/config"
	"example.com/event-planner/gateway/internal/database"
	"example.com/event-planner/gateway/internal/server"
	"example.com/event-planner/gateway/internal/snapshot"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	store, closeStore, err := openSnapshotStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open snapshot store", slog.String("driver", cfg.Snapshot.Driver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	e := server.New(ctx, cfg, logger, store)
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("planner gateway started", slog.String("addr", httpServer.Addr), slog.String("env", cfg.Env))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func openSnapshotStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (snapshot.Store, func(), error) {
	if cfg.Snapshot.Driver == config.SnapshotDriverPostgres {
		db, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}

		store := snapshot.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		return store, db.Close, nil
	}

	store, err := snapshot.OpenSQLite(ctx, cfg.Snapshot.SQLitePath)
	if err != nil {
		return nil, nil, err
	}

	return store, func() { _ = store.Close() }, nil
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
