package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/audit"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/registry"
)

// FaceStore persists registry faces by member id
type FaceStore interface {
	Upsert(ctx context.Context, memberID string, descriptor domain.Descriptor) (*domain.RegistryFace, error)
	Delete(ctx context.Context, memberID string) error
}

// RegistryHandler serves the registry wire protocol: one POST endpoint
// dispatching on the action field. createFace overwrites an existing member.
type RegistryHandler struct {
	store   FaceStore
	auditor audit.Logger
	logger  *slog.Logger
}

func NewRegistryHandler(store FaceStore, auditor audit.Logger, logger *slog.Logger) *RegistryHandler {
	if auditor == nil {
		auditor = &audit.NoOpLogger{}
	}
	return &RegistryHandler{store: store, auditor: auditor, logger: logger}
}

// Handle POST /registry
func (h *RegistryHandler) Handle(c *fiber.Ctx) error {
	var req registry.Request
	if err := c.BodyParser(&req); err != nil {
		return registryError(c, fiber.StatusBadRequest, "invalid request body")
	}

	memberID := strings.TrimSpace(req.MemberID)
	if memberID == "" {
		return registryError(c, fiber.StatusBadRequest, "memberId is required")
	}

	switch req.Action {
	case registry.ActionCreateFace:
		return h.create(c, memberID, req.Descriptor)
	case registry.ActionDeleteFace:
		return h.delete(c, memberID)
	default:
		return registryError(c, fiber.StatusBadRequest, "unknown action "+string(req.Action))
	}
}

func (h *RegistryHandler) create(c *fiber.Ctx, memberID, encoded string) error {
	descriptor, err := registry.DecodeDescriptor(encoded)
	if err != nil || len(descriptor) == 0 {
		return registryError(c, fiber.StatusBadRequest, "descriptor must be a non-empty numeric array")
	}

	face, err := h.store.Upsert(c.Context(), memberID, descriptor)
	if err != nil {
		h.logger.Error("failed to store face", "member_id", memberID, "error", err)
		h.record(c, audit.Event{EventType: audit.EventFaceEnrolled, MemberID: memberID, Error: err.Error()})
		return registryError(c, fiber.StatusInternalServerError, "failed to store face")
	}

	h.logger.Info("face stored", "member_id", memberID, "id", face.ID, "dimensions", len(descriptor))
	h.record(c, audit.Event{
		EventType: audit.EventFaceEnrolled,
		MemberID:  memberID,
		RecordID:  face.ID,
		Success:   true,
		Metadata:  map[string]string{"dimensions": strconv.Itoa(len(descriptor))},
	})
	return c.JSON(registry.Response{ID: face.ID})
}

func (h *RegistryHandler) delete(c *fiber.Ctx, memberID string) error {
	err := h.store.Delete(c.Context(), memberID)
	if errors.Is(err, domain.ErrFaceNotFound) {
		return registryError(c, fiber.StatusNotFound, "face not found")
	}
	if err != nil {
		h.logger.Error("failed to delete face", "member_id", memberID, "error", err)
		h.record(c, audit.Event{EventType: audit.EventFaceRemoved, MemberID: memberID, Error: err.Error()})
		return registryError(c, fiber.StatusInternalServerError, "failed to delete face")
	}

	h.logger.Info("face deleted", "member_id", memberID)
	h.record(c, audit.Event{EventType: audit.EventFaceRemoved, MemberID: memberID, Success: true})
	return c.JSON(registry.Response{})
}

// record never fails the request; audit errors are only logged
func (h *RegistryHandler) record(c *fiber.Ctx, event audit.Event) {
	event.RemoteAddr = c.IP()
	if err := h.auditor.Log(c.Context(), event); err != nil {
		h.logger.Warn("failed to record audit event", "event_type", event.EventType, "error", err)
	}
}

func registryError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(registry.Response{Error: true, Message: message})
}
