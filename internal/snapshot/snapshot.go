// Package snapshot renders the thumbnail stored alongside an enrolled face.
package snapshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// Size is the edge of the square thumbnail in pixels
const Size = 150

const dataURLPrefix = "data:image/png;base64,"

// Crop cuts the face region out of the frame, scales it to Size x Size and
// returns it as a PNG data URL. A box outside the frame falls back to the whole frame.
func Crop(frame *camera.Frame, box domain.BoundingBox) (string, error) {
	if frame == nil || len(frame.Data) == 0 {
		return "", fmt.Errorf("crop snapshot: empty frame")
	}

	img, _, err := image.Decode(bytes.NewReader(frame.Data))
	if err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}

	bounds := img.Bounds()
	region := faceRect(box, bounds)

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, region, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// faceRect converts the box to a pixel rectangle clipped to bounds
func faceRect(box domain.BoundingBox, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(
		int(math.Floor(box.X)),
		int(math.Floor(box.Y)),
		int(math.Ceil(box.X+box.Width)),
		int(math.Ceil(box.Y+box.Height)),
	).Add(bounds.Min).Intersect(bounds)

	if r.Empty() {
		return bounds
	}
	return r
}

// Decode returns the PNG bytes of a data URL produced by Crop
func Decode(dataURL string) ([]byte, error) {
	if len(dataURL) < len(dataURLPrefix) || dataURL[:len(dataURLPrefix)] != dataURLPrefix {
		return nil, fmt.Errorf("not a png data url")
	}
	return base64.StdEncoding.DecodeString(dataURL[len(dataURLPrefix):])
}
