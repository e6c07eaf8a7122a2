package snapshot

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	cameramock "github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera/mock"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

func testFrame(t *testing.T) *camera.Frame {
	t.Helper()
	data, err := cameramock.Image(300, 480)
	require.NoError(t, err)
	return &camera.Frame{Data: data, Width: 300, Height: 480}
}

func TestCrop(t *testing.T) {
	tests := []struct {
		name string
		box  domain.BoundingBox
	}{
		{name: "face inside frame", box: domain.BoundingBox{X: 75, Y: 160, Width: 150, Height: 150}},
		{name: "face overlapping edge", box: domain.BoundingBox{X: 250, Y: 400, Width: 150, Height: 150}},
		{name: "face outside frame", box: domain.BoundingBox{X: 1000, Y: 1000, Width: 10, Height: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, err := Crop(testFrame(t), tt.box)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

			raw, err := Decode(url)
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, Size, cfg.Width)
			assert.Equal(t, Size, cfg.Height)
		})
	}
}

func TestCrop_InvalidFrame(t *testing.T) {
	_, err := Crop(&camera.Frame{Data: []byte("garbage")}, domain.BoundingBox{})
	assert.Error(t, err)

	_, err = Crop(nil, domain.BoundingBox{})
	assert.Error(t, err)
}

func TestFaceRect(t *testing.T) {
	bounds := image.Rect(0, 0, 300, 480)

	assert.Equal(t, image.Rect(10, 20, 111, 121), faceRect(domain.BoundingBox{X: 10.5, Y: 20, Width: 100, Height: 100.5}, bounds))
	assert.Equal(t, image.Rect(250, 400, 300, 480), faceRect(domain.BoundingBox{X: 250, Y: 400, Width: 100, Height: 100}, bounds))
	assert.Equal(t, bounds, faceRect(domain.BoundingBox{X: -50, Y: -50, Width: 10, Height: 10}, bounds))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("data:image/jpeg;base64,AAAA")
	assert.Error(t, err)
}
