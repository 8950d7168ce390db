package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"realty-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) *fiber.App {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		Env:             "development",
		DatabaseURL:     "sqlite::memory:",
		RedisURL:        "redis://" + mr.Addr() + "/0",
		SessionSecret:   "test-secret",
		FrontendOrigins: []string{"https://realty.example.com"},
		HealthAdminKey:  "admin",
		StorageBackend:  config.StorageLocal,
		UploadDir:       t.TempDir(),
		UploadURLPrefix: "/uploads",
		MaxImageBytes:   1 << 20,
		PresignTTL:      time.Minute,
	}
	app, db, rdb, err := CreateApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return app
}

func call(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]interface{}) {
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func jsonReq(method, path, token string, body interface{}) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestListingWishlistFlow(t *testing.T) {
	app := setupApp(t)

	// create a listing with an uploaded main image
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"propertyType": "House", "price": "$350,000", "address": "12 Oak Ave",
		"bedrooms": "3", "bathrooms": "2", "squareFootage": "1800",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("mainImage", "front.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest("POST", "/api/listings", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, out := call(t, app, req)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, out)
	listing := out["data"].(map[string]interface{})
	listingID := listing["id"].(string)
	mainImage := listing["mainImage"].(string)
	assert.Equal(t, "3 Bedroom House", listing["title"])
	require.True(t, strings.HasPrefix(mainImage, "/uploads/listings/"))

	// the image is served back
	imgResp, err := app.Test(httptest.NewRequest("GET", mainImage, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, imgResp.StatusCode)

	// register and log in
	resp, _ = call(t, app, jsonReq("POST", "/api/register", "", map[string]string{"email": "buyer@example.com", "password": "password123"}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, out = call(t, app, jsonReq("POST", "/api/login", "", map[string]string{"email": "buyer@example.com", "password": "password123"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := out["data"].(map[string]interface{})
	token := data["token"].(string)
	userID := data["userId"].(string)

	// wishlist needs a session
	resp, _ = call(t, app, jsonReq("GET", "/api/wishlist/"+userID, "", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, app, jsonReq("POST", "/api/wishlist", token, map[string]string{"userId": userID, "propertyId": listingID}))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, out = call(t, app, jsonReq("GET", "/api/wishlist/"+userID, token, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	saved := out["data"].([]interface{})
	require.Len(t, saved, 1)
	assert.Equal(t, listingID, saved[0].(map[string]interface{})["id"])

	// logout invalidates the token
	resp, _ = call(t, app, jsonReq("DELETE", "/api/logout", token, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = call(t, app, jsonReq("GET", "/api/me", token, nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUploadURL_LocalBackendNotImplemented(t *testing.T) {
	app := setupApp(t)
	resp, _ := call(t, app, jsonReq("POST", "/api/upload-url", "", map[string]string{"fileName": "a.jpg", "fileType": "image/jpeg"}))
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest("OPTIONS", "/api/listings", nil)
	req.Header.Set("Origin", "https://realty.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://realty.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/api/listings", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupApp(t)

	resp, _ := call(t, app, httptest.NewRequest("GET", "/api/listings", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, out := call(t, app, httptest.NewRequest("GET", "/health/json", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "realty-api", out["service"])
	assert.Equal(t, "ok", out["status"])

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `realty_http_requests_total{method="GET",route="/api/listings",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(t)
	resp, out := call(t, app, httptest.NewRequest("GET", "/api/nope", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
}

func TestCreateApp_ClosesDatabaseOnStartupFailure(t *testing.T) {
	var closed []*gorm.DB
	prev := closeDB
	closeDB = func(db *gorm.DB) {
		closed = append(closed, db)
		prev(db)
	}
	t.Cleanup(func() { closeDB = prev })

	base := config.Config{
		DatabaseURL:     "sqlite::memory:",
		RedisURL:        "redis://localhost:6379/0",
		StorageBackend:  config.StorageLocal,
		UploadDir:       t.TempDir(),
		UploadURLPrefix: "/uploads",
	}

	badRedis := base
	badRedis.RedisURL = "not-a-redis-url"
	_, _, _, err := CreateApp(&badRedis)
	require.Error(t, err)
	require.Len(t, closed, 1)
	sqlDB, err := closed[0].DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "pool should be closed")

	badStorage := base
	badStorage.StorageBackend = "ftp"
	_, _, _, err = CreateApp(&badStorage)
	require.Error(t, err)
	assert.Len(t, closed, 2)
}
