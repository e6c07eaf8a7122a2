package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/enroll"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/ws"
)

// Station is the enrollment session the operator API drives
type Station interface {
	Snapshot() enroll.State
	StartCamera(ctx context.Context) error
	StopCamera() error
	ToggleCamera(ctx context.Context) (bool, error)
	SetIdentifier(identifier string)
	Submit(ctx context.Context, confirm enroll.Confirmer) (*domain.EnrolledFace, error)
	SubmitAs(ctx context.Context, identifier string, confirm enroll.Confirmer) (*domain.EnrolledFace, error)
	Faces(ctx context.Context) ([]domain.EnrolledFace, error)
	Remove(ctx context.Context, id string) error
}

type StationHandler struct {
	station Station
	logger  *slog.Logger
}

func NewStationHandler(station Station, logger *slog.Logger) *StationHandler {
	return &StationHandler{station: station, logger: logger}
}

// IdentifierRequest body for PUT /v1/identifier
type IdentifierRequest struct {
	Identifier string `json:"identifier"`
}

// EnrollRequest body for POST /v1/enrollments. A nil Identifier enrolls
// the identifier currently in the field.
type EnrollRequest struct {
	Identifier *string `json:"identifier,omitempty"`
	Overwrite  bool    `json:"overwrite"`
}

// EnrollResponse response for a successful enrollment
type EnrollResponse struct {
	ID            string `json:"id"`
	RegistryID    string `json:"registryId,omitempty"`
	ImageSnapshot string `json:"imageUrl,omitempty"`
	CreatedAt     string `json:"timestamp"`
}

// CameraResponse response for the camera endpoints
type CameraResponse struct {
	State string `json:"state"`
}

// FacesResponse lists the enrolled faces newest first
type FacesResponse struct {
	Faces []ws.FaceItem `json:"faces"`
	Total int           `json:"total"`
}

// State GET /v1/state - snapshot for UI bootstrap
func (h *StationHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.station.Snapshot())
}

// StartCamera POST /v1/camera/start
func (h *StationHandler) StartCamera(c *fiber.Ctx) error {
	if err := h.station.StartCamera(c.Context()); err != nil {
		return err
	}
	return c.JSON(CameraResponse{State: h.station.Snapshot().Camera})
}

// StopCamera POST /v1/camera/stop
func (h *StationHandler) StopCamera(c *fiber.Ctx) error {
	if err := h.station.StopCamera(); err != nil {
		return domain.ErrInternal.WithError(err)
	}
	return c.JSON(CameraResponse{State: h.station.Snapshot().Camera})
}

// ToggleCamera POST /v1/camera/toggle
func (h *StationHandler) ToggleCamera(c *fiber.Ctx) error {
	if _, err := h.station.ToggleCamera(c.Context()); err != nil {
		return err
	}
	return c.JSON(CameraResponse{State: h.station.Snapshot().Camera})
}

// SetIdentifier PUT /v1/identifier - returns the resulting gate decision
func (h *StationHandler) SetIdentifier(c *fiber.Ctx) error {
	var req IdentifierRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	h.station.SetIdentifier(req.Identifier)
	return c.JSON(h.station.Snapshot().Decision)
}

// Enroll POST /v1/enrollments - runs the enrollment pipeline.
// Under the confirm policy an existing id answers 409 FACE_ALREADY_EXISTS
// until the request is repeated with overwrite=true.
func (h *StationHandler) Enroll(c *fiber.Ctx) error {
	var req EnrollRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}

	var confirm enroll.Confirmer
	if req.Overwrite {
		confirm = enroll.AlwaysConfirm
	}

	var (
		face *domain.EnrolledFace
		err  error
	)
	if req.Identifier != nil {
		face, err = h.station.SubmitAs(c.Context(), *req.Identifier, confirm)
	} else {
		face, err = h.station.Submit(c.Context(), confirm)
	}
	if err != nil {
		return err
	}

	item := ws.FaceItems([]domain.EnrolledFace{*face})[0]
	return c.Status(fiber.StatusCreated).JSON(EnrollResponse{
		ID:            item.ID,
		RegistryID:    face.RegistryID,
		ImageSnapshot: item.ImageSnapshot,
		CreatedAt:     item.CreatedAt,
	})
}

// ListFaces GET /v1/faces
func (h *StationHandler) ListFaces(c *fiber.Ctx) error {
	faces, err := h.station.Faces(c.Context())
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	return c.JSON(FacesResponse{
		Faces: ws.FaceItems(faces),
		Total: len(faces),
	})
}

// RemoveFace DELETE /v1/faces/:id - the request itself is the operator's confirmation
func (h *StationHandler) RemoveFace(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return domain.ErrValidationFailed.WithError(errors.New("id is required"))
	}

	if err := h.station.Remove(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
