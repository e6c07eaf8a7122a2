package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/cache"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/config"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/database"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/enroll"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/face"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/registry"
)

// station holds the collaborators shared by every subcommand
type station struct {
	cfg      *config.Config
	logger   *slog.Logger
	faces    *cache.FaceCache
	registry *registry.Client
	source   camera.Source
	detector detector.Detector
	pool     *pgxpool.Pool
}

func openStation(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*station, error) {
	store, pool, err := openCacheStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cachePolicy, err := registry.ParseCachePolicy(cfg.CachePolicy)
	if err != nil {
		closePool(pool)
		return nil, err
	}

	det, err := face.NewDetector(cfg)
	if err != nil {
		closePool(pool)
		return nil, fmt.Errorf("create detector: %w", err)
	}

	faces := cache.NewFaceCache(store)
	return &station{
		cfg:    cfg,
		logger: logger,
		faces:  faces,
		registry: registry.NewClient(registry.Config{
			URL:         cfg.RegistryURL,
			Timeout:     cfg.RegistryTimeout,
			CachePolicy: cachePolicy,
		}, faces, logger),
		source:   face.NewFrameSource(cfg),
		detector: det,
		pool:     pool,
	}, nil
}

// openCacheStore selects the display cache backend named by CACHE_BACKEND
func openCacheStore(ctx context.Context, cfg *config.Config) (cache.Store, *pgxpool.Pool, error) {
	switch cfg.CacheBackend {
	case "file", "":
		return cache.NewFileStore(cfg.CacheDir), nil, nil
	case "memory":
		return cache.NewMemoryStore(), nil, nil
	case "postgres":
		pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("open cache database: %w", err)
		}
		return cache.NewPGStore(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %s (supported: file, memory, postgres)", cfg.CacheBackend)
	}
}

func (s *station) newSession(view enroll.View) (*enroll.Session, error) {
	policy, err := enroll.ParseConflictPolicy(s.cfg.ConflictPolicy)
	if err != nil {
		return nil, err
	}

	width, height := s.cfg.DisplaySize()
	return enroll.NewSession(enroll.Options{
		Constraints: face.Constraints(s.cfg),
		Loop: enroll.LoopConfig{
			Interval:      s.cfg.PollInterval,
			DisplayWidth:  width,
			DisplayHeight: height,
		},
		ConflictPolicy: policy,
		Identifier:     s.cfg.Identifier,
	}, enroll.Deps{
		Source:   s.source,
		Detector: s.detector,
		Registry: s.registry,
		Faces:    s.faces,
	}, view, s.logger), nil
}

// readiness lists the checks behind GET /ready
func (s *station) readiness() []handler.ReadinessCheck {
	var checks []handler.ReadinessCheck
	if hc, ok := s.detector.(detector.HealthChecker); ok {
		checks = append(checks, handler.ReadinessCheck{Name: "detector", Check: hc.HealthCheck})
	}
	if s.pool != nil {
		pool := s.pool
		checks = append(checks, handler.ReadinessCheck{
			Name:  "database",
			Check: func(ctx context.Context) error { return database.HealthCheck(ctx, pool) },
		})
	}
	return checks
}

func (s *station) Close() {
	closePool(s.pool)
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
