package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	face := Detection{Box: BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}, Descriptor: Descriptor{0.1, 0.2}}

	tests := []struct {
		name       string
		detections []Detection
		wantKind   ClassKind
		wantCount  int
	}{
		{"nil result", nil, ClassNone, 0},
		{"empty result", []Detection{}, ClassNone, 0},
		{"one face", []Detection{face}, ClassSingle, 1},
		{"two faces", []Detection{face, face}, ClassMultiple, 2},
		{"five faces", []Detection{face, face, face, face, face}, ClassMultiple, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.detections)
			assert.Equal(t, tt.wantKind, c.Kind())
			assert.Equal(t, tt.wantCount, c.Count())

			d, ok := c.Single()
			assert.Equal(t, tt.wantKind == ClassSingle, ok)
			if ok {
				assert.Equal(t, face.Box, d.Box)
			}
		})
	}
}

func TestClassification_ZeroValueIsNone(t *testing.T) {
	var c Classification
	assert.Equal(t, ClassNone, c.Kind())
	assert.Equal(t, "none", c.Kind().String())
}

func TestBoundingBox_Scale(t *testing.T) {
	box := BoundingBox{X: 100, Y: 50, Width: 200, Height: 100}

	scaled := box.Scale(640, 480, 320, 240)
	assert.Equal(t, BoundingBox{X: 50, Y: 25, Width: 100, Height: 50}, scaled)

	stretched := box.Scale(100, 100, 300, 480)
	assert.InDelta(t, 300, stretched.X, 1e-9)
	assert.InDelta(t, 240, stretched.Y, 1e-9)
	assert.InDelta(t, 600, stretched.Width, 1e-9)
	assert.InDelta(t, 480, stretched.Height, 1e-9)

	assert.Equal(t, box, box.Scale(0, 480, 320, 240))
}

func TestDescriptor_Clone(t *testing.T) {
	d := Descriptor{0.5, -0.25}
	c := d.Clone()
	c[0] = 9

	assert.Equal(t, 0.5, d[0])
	assert.Nil(t, Descriptor(nil).Clone())
}
