package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

func newTestDetector(t *testing.T, handler http.HandlerFunc) *Detector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	return NewDetector(config)
}

func testFrame() *camera.Frame {
	return &camera.Frame{Data: []byte("image"), Width: 300, Height: 480}
}

func TestDetector_Detect(t *testing.T) {
	embedding := make([]float64, 128)
	embedding[0] = 0.25

	d := newTestDetector(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(RepresentResponse{
			Results: []RepresentResult{
				{Embedding: embedding, FacialArea: FacialArea{X: 40, Y: 60, W: 120, H: 150}},
			},
		})
	})

	detections, err := d.Detect(context.Background(), testFrame())

	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, domain.BoundingBox{X: 40, Y: 60, Width: 120, Height: 150}, detections[0].Box)
	assert.Len(t, detections[0].Descriptor, 128)
	assert.Equal(t, 0.25, detections[0].Descriptor[0])
}

func TestDetector_Detect_NoFace(t *testing.T) {
	d := newTestDetector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Face could not be detected in numpy array."}`))
	})

	detections, err := d.Detect(context.Background(), testFrame())

	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestDetector_Detect_Failure(t *testing.T) {
	d := newTestDetector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := d.Detect(context.Background(), testFrame())

	assert.ErrorIs(t, err, domain.ErrDetectorFailed)
	assert.Equal(t, domain.KindDetector, domain.KindOf(err))
}

func TestDetector_Detect_EmptyFrame(t *testing.T) {
	d := NewDetector(DefaultConfig())

	_, err := d.Detect(context.Background(), &camera.Frame{})

	assert.ErrorIs(t, err, domain.ErrDetectorFailed)
}

func TestDetector_LoadModels(t *testing.T) {
	d := newTestDetector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := d.LoadModels(context.Background())

	assert.ErrorIs(t, err, domain.ErrDetectorFailed)
}
