package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realty-backend/bootstrap"

	"github.com/rs/zerolog/log"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := app.Redis.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: not reachable, sessions will fail until it is")
	} else {
		log.Info().Msg("redis: connected")
	}
	cancel()

	port := app.Config.Port
	go func() {
		log.Info().Str("port", port).Str("env", app.Config.Env).Msg("server listening")
		log.Info().Msgf("health check: http://localhost:%s/health/json", port)
		if err := app.Fiber.Listen(":" + port); err != nil {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	if err := app.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
