package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	server "todo-sync"
	"todo-sync/internal/config"
	"todo-sync/internal/logger"
	"todo-sync/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, err, "failed to load configuration")
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error(ctx, err, "failed to create data directory", "dir", dir)
			os.Exit(1)
		}
	}

	st, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		logger.Error(ctx, err, "failed to initialize storage")
		os.Exit(1)
	}
	defer st.Close()

	router := server.NewRouter(st, server.Options{
		Service:    "todo-sync",
		Env:        cfg.Env,
		HealthPath: cfg.HealthPath,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", cfg.Addr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, err, "server failed")
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info(ctx, "shutting down", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, err, "graceful shutdown failed")
		}
	}
}
