package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/bootstrap"
	"github.com/noah-isme/qazaq-teachers/internal/config"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("portal", "student").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	infra, closeInfra, err := bootstrap.OpenInfra(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise infrastructure")
	}
	defer closeInfra()

	app := bootstrap.NewStudentApp(cfg, infra, logger)

	address := config.HTTPAddress(cfg.StudentPort)
	go func() {
		logger.Info().Str("address", address).Msg("student portal listening")
		if err := app.Listen(address); err != nil {
			logger.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
