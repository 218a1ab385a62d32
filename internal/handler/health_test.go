package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name   string
		db     Pinger
		redis  Pinger
		status int
		state  string
	}{
		{"healthy", ok, ok, fiber.StatusOK, "healthy"},
		{"redis not configured", ok, nil, fiber.StatusOK, "healthy"},
		{"redis down", ok, down, fiber.StatusOK, "degraded"},
		{"database down", down, ok, fiber.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.redis)
			app := fiber.New()
			app.Get("/health", h.Check)

			status, body := doJSON(t, app, fiber.MethodGet, "/health", "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.state, body["status"])
		})
	}
}

func TestReadiness(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(PingFunc(func(context.Context) error { return errors.New("down") }), nil)
	app.Get("/ready", h.Readiness)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
