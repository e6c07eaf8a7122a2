package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

const maxSnapshotSize = 10 * 1024 * 1024 // 10MB

// SnapshotConfig holds the configuration for an HTTP snapshot camera
type SnapshotConfig struct {
	URL     string
	Timeout time.Duration
}

// DefaultSnapshotConfig returns a SnapshotConfig with sensible defaults
func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		URL:     "http://localhost:8554/snapshot",
		Timeout: 5 * time.Second,
	}
}

// SnapshotSource reads frames from a camera exposing a still-image endpoint.
// Each Frame call fetches the latest picture, so frames are never queued.
type SnapshotSource struct {
	httpClient *http.Client
	config     SnapshotConfig

	mu          sync.RWMutex
	state       State
	constraints Constraints
	seq         atomic.Uint64
	ended       atomic.Bool
}

// NewSnapshotSource creates a new snapshot camera source
func NewSnapshotSource(config SnapshotConfig) *SnapshotSource {
	return &SnapshotSource{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Start probes the camera once with the requested constraints
func (s *SnapshotSource) Start(ctx context.Context, c Constraints) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying {
		return nil
	}

	s.ended.Store(false)
	if _, err := s.fetch(ctx, c); err != nil {
		return err
	}

	s.constraints = c
	s.state = StatePlaying
	return nil
}

func (s *SnapshotSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateStopped
	return nil
}

// Pause keeps the camera acquired but stops serving frames
func (s *SnapshotSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying {
		s.state = StatePaused
	}
}

func (s *SnapshotSource) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePaused {
		s.state = StatePlaying
	}
}

func (s *SnapshotSource) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == StatePlaying && s.ended.Load() {
		return StateEnded
	}
	return s.state
}

func (s *SnapshotSource) Frame(ctx context.Context) (*Frame, error) {
	s.mu.RLock()
	c := s.constraints
	s.mu.RUnlock()

	if s.State() != StatePlaying {
		return nil, domain.ErrCameraInactive
	}

	frame, err := s.fetch(ctx, c)
	if err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *SnapshotSource) fetch(ctx context.Context, c Constraints) (*Frame, error) {
	u, err := url.Parse(s.config.URL)
	if err != nil {
		return nil, domain.ErrCameraUnavailable.WithError(fmt.Errorf("parse camera url: %w", err))
	}
	q := u.Query()
	q.Set("width", strconv.Itoa(c.Width))
	q.Set("height", strconv.Itoa(c.Height))
	q.Set("facingMode", c.FacingMode)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domain.ErrCameraUnavailable.WithError(fmt.Errorf("create request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrCameraUnavailable.WithError(fmt.Errorf("do request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotSize))
	if err != nil {
		return nil, domain.ErrCameraUnavailable.WithError(fmt.Errorf("read snapshot: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrCameraPermission.WithError(statusError(resp.StatusCode, body))
	case resp.StatusCode == http.StatusGone:
		s.ended.Store(true)
		return nil, domain.ErrCameraUnavailable.WithError(statusError(resp.StatusCode, body))
	case resp.StatusCode >= 400:
		return nil, domain.ErrCameraUnavailable.WithError(statusError(resp.StatusCode, body))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrCameraUnavailable.WithError(fmt.Errorf("decode snapshot: %w", err))
	}

	return &Frame{
		Seq:         s.seq.Add(1),
		Data:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Width:       cfg.Width,
		Height:      cfg.Height,
		CapturedAt:  time.Now(),
	}, nil
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("camera returned status %d: %s", status, msg)
}

var _ Source = (*SnapshotSource)(nil)
