package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends for listing images.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env             string
	Port            string
	LogLevel        string
	DatabaseURL     string // postgres URL or sqlite:<path>
	RedisURL        string
	SessionSecret   string // signs the session cookie; unsigned when empty
	CookieCrossSite bool   // SameSite=None for a frontend on another site
	FrontendOrigins []string
	HealthAdminKey  string

	StorageBackend  string
	UploadDir       string
	UploadURLPrefix string
	MaxImageBytes   int64

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	S3PublicURL string // optional CDN/base URL for public object links
	PresignTTL  time.Duration
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "sqlite:data/realty.db")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("FRONTEND_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("STORAGE_BACKEND", StorageLocal)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("MAX_IMAGE_BYTES", 10<<20)
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("PRESIGN_TTL", "15m")

	return &Config{
		Env:             v.GetString("APP_ENV"),
		Port:            v.GetString("PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		RedisURL:        v.GetString("REDIS_URL"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		CookieCrossSite: v.GetBool("COOKIE_CROSS_SITE"),
		FrontendOrigins: splitList(v.GetString("FRONTEND_ORIGINS")),
		HealthAdminKey:  v.GetString("HEALTH_ADMIN_KEY"),
		StorageBackend:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadURLPrefix: "/" + strings.Trim(v.GetString("UPLOAD_URL_PREFIX"), "/"),
		MaxImageBytes:   v.GetInt64("MAX_IMAGE_BYTES"),
		S3Endpoint:      v.GetString("S3_ENDPOINT"),
		S3AccessKey:     v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:     v.GetString("S3_SECRET_KEY"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3UseSSL:        v.GetBool("S3_USE_SSL"),
		S3PublicURL:     strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		PresignTTL:      v.GetDuration("PRESIGN_TTL"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
