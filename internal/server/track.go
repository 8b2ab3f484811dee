package server

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"TrackingServer/internal/model"
)

func (s *Server) trackHandler(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")

	switch c.Request().Method {
	case http.MethodOptions:
		c.Response().Header().Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)
		c.Response().Header().Set(echo.HeaderAccessControlAllowMethods, "POST, OPTIONS")
		return c.NoContent(http.StatusOK)
	case http.MethodPost:
	default:
		return c.JSON(http.StatusMethodNotAllowed, map[string]string{
			"error": "Method not allowed",
		})
	}

	if err := s.receiveTracking(c); err != nil {
		s.logger.Error("Tracking error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Tracking data received",
		"timestamp": model.FormatTimestamp(s.now()),
	})
}

// receiveTracking parses and logs one event and hands it to the store, if
// one is configured. Only parse and read failures are returned.
func (s *Server) receiveTracking(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	event, err := model.ParseTrackingEvent(body)
	if err != nil {
		return err
	}

	s.logger.Info("Visitor tracking data received",
		"type", event.Type,
		"timestamp", model.FormatTimestamp(s.now()),
		"sessionId", event.SessionId(),
		"url", event.Url(),
		"userAgent", event.UserAgent(),
		"eventName", event.EventName(),
		"referrer", event.Referrer(),
	)

	if s.db != nil {
		s.persist(c.Request().Context(), model.NewTrackingRecord(event, s.clientIp(c.Request()), s.now()))
	}

	return nil
}

// persist writes the record to the store. Failures are logged and never
// reach the caller.
func (s *Server) persist(ctx context.Context, record model.TrackingRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Failed to save to database", "panic", r)
		}
	}()

	if err := s.db.InsertTracking(ctx, record); err != nil {
		s.logger.Error("Failed to save to database", "error", err)
		return
	}

	s.logger.Info("Data saved to store successfully")
}

func (s *Server) clientIp(r *http.Request) string {
	if ip := r.Header.Get(echo.HeaderXForwardedFor); ip != "" {
		return ip
	}
	return r.Header.Get(s.clientIpHeader)
}
