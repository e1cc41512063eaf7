package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pelisdb/movie-api/internal/mykafka"
)

// ErrorResponse is the error envelope shared by every endpoint. Details is
// only populated in development; codes are stable and machine readable.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func fail(c echo.Context, status int, msg, code string) error {
	return c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

func failDev(c echo.Context, status int, msg, code string, dev bool, err error) error {
	body := ErrorResponse{Error: msg, Code: code}
	if dev && err != nil {
		body.Details = err.Error()
	}
	return c.JSON(status, body)
}

// publish sends a domain event, best effort. A nil producer disables
// publishing; delivery failures are logged and never fail the request.
func publish(c echo.Context, producer *mykafka.Producer, topic, key string, event map[string]any) {
	if producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := producer.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
