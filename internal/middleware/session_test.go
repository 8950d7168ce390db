package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupSessionApp(t *testing.T) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	app := fiber.New()
	app.Use(Session(SessionConfig{Secret: testSecret}, rdb))
	app.Post("/login", func(c *fiber.Ctx) error {
		sid := RegenerateSessionID(c)
		SetSessionUser(c, SessionUser{UserID: "550e8400-e29b-41d4-a716-446655440000", Email: "a@b.com"})
		return c.SendString(sid)
	})
	app.Get("/private", RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c).String())
	})
	return app, rdb
}

func storeSession(t *testing.T, rdb *redis.Client, id string) {
	b, _ := json.Marshal(map[string]interface{}{
		"user": map[string]interface{}{"user_id": "550e8400-e29b-41d4-a716-446655440000", "email": "a@b.com"},
	})
	require.NoError(t, rdb.Set(context.Background(), SessionRedisPrefix+id, b, 0).Err())
}

func TestSession_LoginPersists(t *testing.T) {
	app, rdb := setupSessionApp(t)
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	sid, _ := io.ReadAll(resp.Body)

	raw, err := rdb.Get(context.Background(), SessionRedisPrefix+string(sid)).Result()
	require.NoError(t, err)
	assert.Contains(t, raw, "a@b.com")
	ttl := rdb.TTL(context.Background(), SessionRedisPrefix+string(sid)).Val()
	assert.Greater(t, ttl.Hours(), 23.0)
}

func TestSession_AnonymousRequestWritesNothing(t *testing.T) {
	app, rdb := setupSessionApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	keys, err := rdb.Keys(context.Background(), "*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSession_SignedCookie(t *testing.T) {
	app, rdb := setupSessionApp(t)
	id := uuid.NewString()
	storeSession(t, rdb, id)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Cookie", SessionCookieName+"="+SignSessionCookie(id, testSecret))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", string(body))

	forged := httptest.NewRequest("GET", "/private", nil)
	forged.Header.Set("Cookie", SessionCookieName+"=s:"+id+".bogus")
	resp, err = app.Test(forged)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSession_BearerToken(t *testing.T) {
	app, rdb := setupSessionApp(t)
	id := uuid.NewString()
	storeSession(t, rdb, id)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+id)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	unknown := httptest.NewRequest("GET", "/private", nil)
	unknown.Header.Set("Authorization", "Bearer "+uuid.NewString())
	resp, err = app.Test(unknown)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUnsignSessionCookie(t *testing.T) {
	id := uuid.NewString()
	assert.Equal(t, id, UnsignSessionCookie(SignSessionCookie(id, "k"), "k"))
	assert.Equal(t, "", UnsignSessionCookie(SignSessionCookie(id, "k"), "other"))
	assert.Equal(t, id, UnsignSessionCookie("s:"+id, ""))
	assert.Equal(t, "", UnsignSessionCookie("s:"+id, "k"))
	assert.Equal(t, "", UnsignSessionCookie("s:not-a-uuid", ""))
	assert.Equal(t, "", UnsignSessionCookie("", ""))
}

func TestSessionCookieConfig(t *testing.T) {
	c := SessionCookieConfig(SessionConfig{})
	assert.Equal(t, SessionCookieName, c.Name)
	assert.True(t, c.HTTPOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, fiber.CookieSameSiteLaxMode, c.SameSite)

	cross := SessionCookieConfig(SessionConfig{CrossSite: true})
	assert.True(t, cross.Secure)
	assert.Equal(t, fiber.CookieSameSiteNoneMode, cross.SameSite)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
