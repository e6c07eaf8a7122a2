package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// ReadinessCheck reports whether one dependency can serve requests
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	checks []ReadinessCheck
	logger *slog.Logger
}

func NewHealthHandler(logger *slog.Logger, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// Ready runs every readiness check and answers 503 if any fails
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	status := "ready"
	var results map[string]string

	for _, check := range h.checks {
		if results == nil {
			results = make(map[string]string, len(h.checks))
		}
		if err := check.Check(c.Context()); err != nil {
			h.logger.Warn("readiness check failed", "check", check.Name, "error", err)
			results[check.Name] = err.Error()
			status = "unavailable"
			continue
		}
		results[check.Name] = "ok"
	}

	code := fiber.StatusOK
	if status != "ready" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(HealthResponse{
		Status: status,
		Checks: results,
	})
}
