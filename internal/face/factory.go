package face

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	cameramock "github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera/mock"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/config"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector/deepface"
	detectormock "github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector/mock"
)

// DetectorType defines supported face detector types
type DetectorType string

const (
	// DetectorTypeDeepFace is the DeepFace HTTP detector
	DetectorTypeDeepFace DetectorType = "deepface"
	// DetectorTypeMock always sees exactly one face, for development without a model server
	DetectorTypeMock DetectorType = "mock"
)

// NewDetector creates a Detector instance based on configuration
//
// Environment variables:
//   - DETECTOR: "deepface" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - DEEPFACE_MODEL, DEEPFACE_DETECTOR: model and detector backend names
//   - DETECTOR_TIMEOUT: per-request timeout
func NewDetector(cfg *config.Config) (detector.Detector, error) {
	switch DetectorType(cfg.Detector) {
	case DetectorTypeDeepFace, "":
		return createDeepFaceDetector(cfg), nil

	case DetectorTypeMock:
		return detectormock.New(1), nil

	default:
		return nil, fmt.Errorf("unknown detector type: %s (supported: %s, %s)",
			cfg.Detector, DetectorTypeDeepFace, DetectorTypeMock)
	}
}

func createDeepFaceDetector(cfg *config.Config) detector.Detector {
	defaults := deepface.DefaultConfig()
	dfConfig := deepface.Config{
		BaseURL:  cfg.DeepFaceURL,
		Timeout:  cfg.DetectorTimeout,
		Model:    cfg.DeepFaceModel,
		Detector: cfg.DeepFaceDetector,
	}

	if dfConfig.BaseURL == "" {
		dfConfig.BaseURL = defaults.BaseURL
	}
	if dfConfig.Timeout <= 0 {
		dfConfig.Timeout = defaults.Timeout
	}
	if dfConfig.Model == "" {
		dfConfig.Model = defaults.Model
	}
	if dfConfig.Detector == "" {
		dfConfig.Detector = defaults.Detector
	}

	return deepface.NewDetector(dfConfig)
}

// NewFrameSource returns the HTTP snapshot camera when CAMERA_URL is set,
// otherwise a synthetic source
func NewFrameSource(cfg *config.Config) camera.Source {
	if cfg.CameraURL == "" {
		return cameramock.New()
	}

	snapshotConfig := camera.DefaultSnapshotConfig()
	snapshotConfig.URL = cfg.CameraURL
	return camera.NewSnapshotSource(snapshotConfig)
}

// Constraints builds the camera request from configuration
func Constraints(cfg *config.Config) camera.Constraints {
	c := camera.DefaultConstraints()
	if cfg.CameraWidth > 0 {
		c.Width = cfg.CameraWidth
	}
	if cfg.CameraHeight > 0 {
		c.Height = cfg.CameraHeight
	}
	if cfg.CameraFacingMode != "" {
		c.FacingMode = cfg.CameraFacingMode
	}
	return c
}
