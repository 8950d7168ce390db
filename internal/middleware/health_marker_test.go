package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthMarker_CountsAndLogsErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Tracing(), HealthMarker(rdb))
	app.Get("/api/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/fail", func(c *fiber.Ctx) error { return errors.New("db down") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("up") })

	for _, p := range []string{"/api/ok", "/api/ok", "/api/fail", "/health"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}

	ctx := context.Background()
	assert.Equal(t, "3", rdb.Get(ctx, KeyReqTotal).Val())
	assert.Equal(t, "3", rdb.Get(ctx, KeyResCount).Val())
	assert.Equal(t, "1", rdb.Get(ctx, KeyReqErrors).Val())
	entries := rdb.LRange(ctx, KeyErrorLog, 0, -1).Val()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "db down")
	assert.Contains(t, entries[0], "/api/fail")
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/fail", func(c *fiber.Ctx) error { return errors.New("pq: password authentication failed") })
	app.Get("/gone", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "Cannot GET /gone") })

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Internal Server Error")
	assert.NotContains(t, body, "password")

	resp, err = app.Test(httptest.NewRequest("GET", "/gone", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Cannot GET /gone")
}

func TestTracing_KeepsValidIncomingID(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "550e8400-e29b-41d4-a716-446655440000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", resp.Header.Get("X-Trace-Id"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "<script>")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "<script>", resp.Header.Get("X-Trace-Id"))
	assert.Len(t, resp.Header.Get("X-Trace-Id"), 36)
}

func TestHealthMarker_LogsStatusOnlyFailures(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/api/busy", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusServiceUnavailable) })

	_, err = app.Test(httptest.NewRequest("GET", "/api/busy", nil))
	require.NoError(t, err)

	entries := rdb.LRange(context.Background(), KeyErrorLog, 0, -1).Val()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], `"message":"HTTP Service Unavailable"`)
}
