package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
	assert.Equal(t, "/uploads", cfg.UploadURLPrefix)
	assert.Equal(t, int64(10<<20), cfg.MaxImageBytes)
	assert.Equal(t, 15*time.Minute, cfg.PresignTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", " S3 ")
	t.Setenv("UPLOAD_URL_PREFIX", "static/img/")
	t.Setenv("FRONTEND_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("S3_PUBLIC_URL", "https://cdn.example.com/")
	t.Setenv("PRESIGN_TTL", "1h")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("COOKIE_CROSS_SITE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorageS3, cfg.StorageBackend)
	assert.Equal(t, "/static/img", cfg.UploadURLPrefix)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.FrontendOrigins)
	assert.Equal(t, "https://cdn.example.com", cfg.S3PublicURL)
	assert.Equal(t, time.Hour, cfg.PresignTTL)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.True(t, cfg.CookieCrossSite)
}
