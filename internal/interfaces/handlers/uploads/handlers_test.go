package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	uploadsvc "realty-backend/internal/application/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	err error
}

func (f *fakePresigner) PresignPut(_ context.Context, key string, _ time.Duration) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "https://s3.example.com/bucket/" + key + "?X-Amz-Signature=abc", "https://cdn.example.com/" + key, nil
}

func setupUploadsTest(p uploadsvc.Presigner) *fiber.App {
	h := &Handlers{Service: &uploadsvc.Service{Presigner: p, TTL: time.Minute}}
	app := fiber.New()
	app.Post("/api/upload-url", h.GetUploadURL)
	return app
}

func post(t *testing.T, app *fiber.App, body map[string]string) (*http.Response, map[string]interface{}) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/upload-url", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp, out
}

func TestGetUploadURL_OK(t *testing.T) {
	app := setupUploadsTest(&fakePresigner{})
	resp, out := post(t, app, map[string]string{"fileName": "front.JPG", "fileType": "image/jpeg"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := out["data"].(map[string]interface{})
	key := data["key"].(string)
	assert.True(t, strings.HasPrefix(key, "listings/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Contains(t, data["url"], "X-Amz-Signature")
	assert.Equal(t, "https://cdn.example.com/"+key, data["publicUrl"])
}

func TestGetUploadURL_BadRequest(t *testing.T) {
	app := setupUploadsTest(&fakePresigner{})
	resp, _ := post(t, app, map[string]string{"fileName": "front.jpg"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, app, map[string]string{"fileName": "notes.txt", "fileType": "text/plain"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetUploadURL_LocalBackend(t *testing.T) {
	app := setupUploadsTest(nil)
	resp, _ := post(t, app, map[string]string{"fileName": "a.png", "fileType": "image/png"})
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)
}

func TestGetUploadURL_PresignFailure(t *testing.T) {
	app := setupUploadsTest(&fakePresigner{err: errors.New("minio down")})
	resp, out := post(t, app, map[string]string{"fileName": "a.png", "fileType": "image/png"})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to generate upload URL", out["error"].(map[string]interface{})["message"])
}
