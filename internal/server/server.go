package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"TrackingServer/internal/database"
	"TrackingServer/internal/model"
)

type Server struct {
	port           int
	clientIpHeader string

	// nil when no store credentials are configured
	db     database.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewServer builds the http server for the tracking endpoint. The returned
// func closes the store and must be called once the server has shut down.
func NewServer(config model.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	newServer := &Server{
		port:           config.Port,
		clientIpHeader: config.ClientIpHeader,
		logger:         logger,
		now:            time.Now,
	}

	if config.Store.Enabled() {
		db, err := database.New(config.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("could not create store: %w", err)
		}
		newServer.db = db
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", newServer.port),
		Handler:      newServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return server, newServer.closeStore, nil
}

func (s *Server) closeStore() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
