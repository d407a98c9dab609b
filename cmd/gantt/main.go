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

	"gantt/internal/auth"
	"gantt/internal/config"
	"gantt/internal/server"
	"gantt/internal/storage/sqlite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("gantt scheduler starting", slog.String("env", cfg.Environment))

	sessions, err := auth.NewSessions([]byte(cfg.JWTSecret))
	if err != nil {
		logger.Error("unable to configure sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}

	verifier, err := auth.NewGoogleVerifier(context.Background(), cfg.GoogleClientID, cfg.VerifyTimeout, logger)
	if err != nil {
		logger.Error("unable to configure google verifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var storeOpts []sqlite.Option
	if cfg.CheckRefs {
		storeOpts = append(storeOpts, sqlite.WithReferenceCheck())
	}
	store, err := sqlite.Open(cfg.DBPath, logger, storeOpts...)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	srv := server.New(store, sessions, verifier, logger, server.Options{
		StaticDir:  cfg.StaticDir,
		Production: cfg.Production(),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
