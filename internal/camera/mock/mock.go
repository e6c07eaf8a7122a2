// Package mock provides an in-process frame source for development and tests.
package mock

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// Source serves one synthetic frame at the requested size
type Source struct {
	// StartErr, when set, is returned by Start (e.g. to simulate a denied permission)
	StartErr error

	mu          sync.RWMutex
	state       camera.State
	constraints camera.Constraints
	data        []byte
	seq         atomic.Uint64
	starts      int
}

// New creates a new mock Source
func New() *Source {
	return &Source{}
}

func (s *Source) Start(ctx context.Context, c camera.Constraints) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.starts++
	if s.StartErr != nil {
		return s.StartErr
	}
	if s.state == camera.StatePlaying {
		return nil
	}

	data, err := Image(c.Width, c.Height)
	if err != nil {
		return domain.ErrCameraUnavailable.WithError(err)
	}

	s.constraints = c
	s.data = data
	s.state = camera.StatePlaying
	return nil
}

func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = camera.StateStopped
	return nil
}

// SetState forces the playback state
func (s *Source) SetState(state camera.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Source) State() camera.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Starts reports how many times Start was called
func (s *Source) Starts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.starts
}

func (s *Source) Frame(ctx context.Context) (*camera.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != camera.StatePlaying {
		return nil, domain.ErrCameraInactive
	}

	return &camera.Frame{
		Seq:         s.seq.Add(1),
		Data:        s.data,
		ContentType: "image/png",
		Width:       s.constraints.Width,
		Height:      s.constraints.Height,
		CapturedAt:  time.Now(),
	}, nil
}

// Image renders a w x h PNG with a light gradient
func Image(w, h int) ([]byte, error) {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			//nolint:gosec // values stay in 0..255
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ camera.Source = (*Source)(nil)
