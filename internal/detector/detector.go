package detector

import (
	"context"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// DescriptorLength is the descriptor size of the default model (Facenet)
const DescriptorLength = 128

// Detector locates faces in a frame and extracts one descriptor per face
type Detector interface {
	// LoadModels warms the detector up. Called once at startup.
	LoadModels(ctx context.Context) error

	// Detect returns every face found in the frame, with boxes in frame pixels.
	// No face is an empty result, not an error.
	Detect(ctx context.Context, frame *camera.Frame) ([]domain.Detection, error)
}

// HealthChecker is implemented by detectors backed by a remote service
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
