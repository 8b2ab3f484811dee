package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const maxBodySize = "1M"

type healthReporter interface {
	Health() map[string]string
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.HTTPErrorHandler
	e.Use(s.AllowOrigin)
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))

	e.GET("/health", s.healthHandler)

	// Every method is routed to the handler, which answers preflight and
	// rejects anything but POST itself.
	e.Any("/track", s.trackHandler)
	e.Any("/.netlify/functions/track", s.trackHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	resp := map[string]any{
		"status": "up",
		"store":  "disabled",
	}

	if s.db != nil {
		resp["store"] = "enabled"
		if reporter, ok := s.db.(healthReporter); ok {
			resp["database"] = reporter.Health()
		}
	}

	return c.JSON(http.StatusOK, resp)
}
