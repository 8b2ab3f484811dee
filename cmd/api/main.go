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

	"TrackingServer/internal/model"
	"TrackingServer/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config, err := model.LoadConfig()
	if err != nil {
		fatal(logger, "Could not load config", err)
	}

	srv, closeStore, err := server.NewServer(config, logger)
	if err != nil {
		fatal(logger, "Could not create server", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Tracking endpoint listening", "addr", srv.Addr, "store", config.Store.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "Server failed", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := closeStore(); err != nil {
		logger.Error("Could not close store", "error", err)
	}
	if shutdownErr != nil {
		fatal(logger, "Server forced to shutdown", shutdownErr)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
