package bootstrap

import (
	"io"
	"os"
	"strings"
	"time"

	"realty-backend/internal/config"
	"realty-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App is the assembled server and the connections it owns.
type App struct {
	Config *config.Config
	Fiber  *fiber.App
	DB     *gorm.DB
	Redis  *redis.Client
}

// New loads config, configures the global logger and builds the Fiber app.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ConfigureLogger(cfg, os.Stdout)
	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, Fiber: app, DB: db, Redis: rdb}, nil
}

// ConfigureLogger sets the global zerolog logger: console output in
// development, JSON in production, level from LOG_LEVEL.
func ConfigureLogger(cfg *config.Config, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(ParseLevel(cfg.LogLevel))
	if !cfg.IsProduction() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "realty-api").Logger()
}

// ParseLevel maps LOG_LEVEL to a zerolog level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

// Close releases the database pool and the Redis client.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("redis: close failed")
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn().Err(err).Msg("database: close failed")
			}
		}
	}
}
