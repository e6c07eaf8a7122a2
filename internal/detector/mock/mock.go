// Package mock provides a deterministic detector for development and tests.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// Detector returns a configurable number of faces per frame.
// Descriptors are derived from the frame bytes, so equal frames give equal descriptors.
type Detector struct {
	faces atomic.Int32
	calls atomic.Int32

	mu      sync.Mutex
	err     error
	loadErr error
	hold    chan struct{}
}

// New creates a mock detector that sees the given number of faces
func New(faces int) *Detector {
	d := &Detector{}
	d.SetFaces(faces)
	return d
}

// SetFaces changes how many faces the next Detect call reports
func (d *Detector) SetFaces(n int) {
	//nolint:gosec // face counts are small
	d.faces.Store(int32(n))
}

// SetError makes Detect fail with err until cleared with nil
func (d *Detector) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// SetLoadError makes LoadModels fail with err
func (d *Detector) SetLoadError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadErr = err
}

// Hold blocks every Detect call until the returned function is called
func (d *Detector) Hold() (release func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan struct{})
	d.hold = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			if d.hold == ch {
				d.hold = nil
			}
			d.mu.Unlock()
			close(ch)
		})
	}
}

// Calls reports how many Detect calls were made
func (d *Detector) Calls() int {
	return int(d.calls.Load())
}

func (d *Detector) LoadModels(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadErr
}

func (d *Detector) Detect(ctx context.Context, frame *camera.Frame) ([]domain.Detection, error) {
	d.calls.Add(1)

	d.mu.Lock()
	hold, err := d.hold, d.err
	d.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	n := int(d.faces.Load())
	detections := make([]domain.Detection, 0, n)
	for i := 0; i < n; i++ {
		detections = append(detections, domain.Detection{
			Box:        faceBox(frame, i, n),
			Descriptor: Descriptor(frame.Data, i),
		})
	}
	return detections, nil
}

// faceBox lays n faces side by side in the middle band of the frame
func faceBox(frame *camera.Frame, i, n int) domain.BoundingBox {
	w := float64(frame.Width) / float64(n+1)
	h := float64(frame.Height) / 3
	return domain.BoundingBox{
		X:      w*float64(i) + w/2,
		Y:      h,
		Width:  w,
		Height: w,
	}
}

// Descriptor generates a unit-length descriptor from data and a face index
func Descriptor(data []byte, index int) domain.Descriptor {
	var idx [8]byte
	//nolint:gosec // index is never negative
	binary.BigEndian.PutUint64(idx[:], uint64(index))
	hash := sha256.Sum256(append(idx[:], data...))

	descriptor := make(domain.Descriptor, detector.DescriptorLength)
	hashLen := len(hash)
	for i := range descriptor {
		descriptor[i] = (float64(hash[i%hashLen])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range descriptor {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return descriptor
	}

	for i := range descriptor {
		descriptor[i] /= norm
	}
	return descriptor
}

var _ detector.Detector = (*Detector)(nil)
