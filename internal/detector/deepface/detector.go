package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// Detector implements detector.Detector using DeepFace API
type Detector struct {
	client *Client
}

// NewDetector creates a new DeepFace detector
func NewDetector(config Config) *Detector {
	return &Detector{
		client: NewClient(config),
	}
}

func (d *Detector) LoadModels(ctx context.Context) error {
	if err := d.client.Ping(ctx); err != nil {
		return domain.ErrDetectorFailed.WithError(fmt.Errorf("load models: %w", err))
	}
	return nil
}

var _ detector.HealthChecker = (*Detector)(nil)

// HealthCheck reports whether the DeepFace API answers
func (d *Detector) HealthCheck(ctx context.Context) error {
	return d.client.Ping(ctx)
}

// Detect sends the frame to /represent and maps each result to a detection
func (d *Detector) Detect(ctx context.Context, frame *camera.Frame) ([]domain.Detection, error) {
	if frame == nil || len(frame.Data) == 0 {
		return nil, domain.ErrDetectorFailed.WithError(errors.New("empty frame"))
	}

	imageBase64 := base64.StdEncoding.EncodeToString(frame.Data)

	resp, err := d.client.Represent(ctx, imageBase64)
	if errors.Is(err, ErrNoFaceDetected) {
		return []domain.Detection{}, nil
	}
	if err != nil {
		return nil, domain.ErrDetectorFailed.WithError(fmt.Errorf("detect faces: %w", err))
	}

	detections := make([]domain.Detection, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Embedding) == 0 {
			return nil, domain.ErrDetectorFailed.WithError(ErrInvalidResponse)
		}

		detections = append(detections, domain.Detection{
			Box: domain.BoundingBox{
				X:      float64(result.FacialArea.X),
				Y:      float64(result.FacialArea.Y),
				Width:  float64(result.FacialArea.W),
				Height: float64(result.FacialArea.H),
			},
			Descriptor: domain.Descriptor(result.Embedding),
		})
	}

	return detections, nil
}

var _ detector.Detector = (*Detector)(nil)
