package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/api"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/audit"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/config"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/database"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.NewFileLogger(cfg.Environment, cfg.LogFile)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("starting registry server",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	router := api.NewRegistryRouter(logger, repository.NewFaceRepository(pool), audit.NewSlogLogger(logger), handler.ReadinessCheck{
		Name:  "database",
		Check: func(ctx context.Context) error { return database.HealthCheck(ctx, pool) },
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	logger.Info("server stopped")

	return nil
}
