package enroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/cache"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// Options configure one enrollment session
type Options struct {
	Constraints    camera.Constraints
	Loop           LoopConfig
	ConflictPolicy ConflictPolicy
	// Identifier pre-fills the identifier field once at Open
	Identifier string
}

// Deps are the collaborators a session drives
type Deps struct {
	Source   camera.Source
	Detector detector.Detector
	Registry Registry
	Faces    *cache.FaceCache
}

// State is a point-in-time snapshot of the session for UI bootstrap
type State struct {
	SessionID      string    `json:"sessionId"`
	Camera         string    `json:"camera"`
	Identifier     string    `json:"identifier"`
	Classification string    `json:"classification"`
	FaceCount      int       `json:"faceCount"`
	Decision       Decision  `json:"decision"`
	SubmitEnabled  bool      `json:"submitEnabled"`
	Pipeline       string    `json:"pipeline"`
	ConflictPolicy string    `json:"conflictPolicy"`
	Loop           LoopStats `json:"loop"`
	StartedAt      time.Time `json:"startedAt"`
}

// Session owns the camera, detection loop, gate and pipeline of one station.
// Every operator action goes through it.
type Session struct {
	id        uuid.UUID
	opts      Options
	deps      Deps
	view      View
	logger    *slog.Logger
	startedAt time.Time

	gate     *Gate
	loop     *Loop
	pipeline *Pipeline

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func NewSession(opts Options, deps Deps, view View, logger *slog.Logger) *Session {
	id := uuid.New()
	logger = logger.With("session_id", id.String())

	gate := NewGate(view)
	return &Session{
		id:       id,
		opts:     opts,
		deps:     deps,
		view:     view,
		logger:   logger,
		gate:     gate,
		loop:     NewLoop(opts.Loop, deps.Source, deps.Detector, gate, view, logger),
		pipeline: NewPipeline(deps.Source, deps.Detector, gate, view, deps.Registry, deps.Faces, opts.ConflictPolicy, logger),
	}
}

func (s *Session) ID() string {
	return s.id.String()
}

// Open warms the detector up, loads the enrolled list and applies the
// launch identifier. ctx bounds the session's lifetime.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.startedAt = time.Now()
	s.mu.Unlock()

	if err := s.deps.Detector.LoadModels(ctx); err != nil {
		s.logger.Error("failed to load detector models", "error", err)
	}

	s.refreshFaces(ctx)

	if s.opts.Identifier != "" {
		s.SetIdentifier(s.opts.Identifier)
	}
	s.gate.Refresh()
	s.view.CameraChanged(s.deps.Source.State())

	s.logger.Info("enrollment session opened", "conflict_policy", string(s.pipeline.Policy()))
}

// StartCamera acquires the camera and starts the detection loop.
// Acquisition errors are shown to the operator as returned by the device.
func (s *Session) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrCameraUnavailable.WithError(errors.New("session closed"))
	}

	if s.deps.Source.State() != camera.StatePlaying {
		if err := s.deps.Source.Start(ctx, s.opts.Constraints); err != nil {
			s.logger.Error("failed to start camera", "error", err)
			s.view.Notify(err.Error())
			s.view.CameraChanged(s.deps.Source.State())
			return err
		}
	}

	base := s.ctx
	if base == nil {
		base = context.Background()
	}
	s.loop.Start(base)
	s.view.CameraChanged(camera.StatePlaying)
	return nil
}

// StopCamera stops the loop and releases the camera. An in-flight
// submission is left to complete.
func (s *Session) StopCamera() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCamera()
}

func (s *Session) stopCamera() error {
	// the source goes first so a tick racing Stop sees it inactive
	err := s.deps.Source.Stop()
	s.loop.Stop()
	s.view.CameraChanged(s.deps.Source.State())
	if err != nil {
		return fmt.Errorf("stop camera: %w", err)
	}
	return nil
}

// ToggleCamera starts a stopped camera or stops a running one and
// reports whether the camera is now playing
func (s *Session) ToggleCamera(ctx context.Context) (bool, error) {
	if s.deps.Source.State() == camera.StatePlaying {
		return false, s.StopCamera()
	}
	if err := s.StartCamera(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) CameraState() camera.State {
	return s.deps.Source.State()
}

func (s *Session) SetIdentifier(identifier string) {
	s.gate.SetIdentifier(identifier)
	s.view.IdentifierChanged(identifier)
}

func (s *Session) Identifier() string {
	return s.gate.Identifier()
}

// Gate exposes the enrollment gate for observers
func (s *Session) Gate() *Gate {
	return s.gate
}

// Submit enrolls the current identifier
func (s *Session) Submit(ctx context.Context, confirm Confirmer) (*domain.EnrolledFace, error) {
	face, err := s.pipeline.Run(ctx, s.gate.Identifier(), confirm)
	if err == nil || domain.KindOf(err) == domain.KindRegistry {
		// the optimistic cache policy may have changed the list on failure too
		s.refreshFaces(ctx)
	}
	return face, err
}

// SubmitAs sets the identifier and enrolls it
func (s *Session) SubmitAs(ctx context.Context, identifier string, confirm Confirmer) (*domain.EnrolledFace, error) {
	s.SetIdentifier(identifier)
	return s.Submit(ctx, confirm)
}

// Remove deletes an enrolled face from the registry and the display cache.
// The registry is always asked, so an id the cache already lost can still be
// removed. It is not found only when neither side knows it.
func (s *Session) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	exists, err := s.deps.Faces.Has(ctx, id)
	if err != nil && !errors.Is(err, cache.ErrCorrupt) {
		return domain.ErrInternal.WithError(err)
	}

	err = s.deps.Registry.Remove(ctx, id)
	s.refreshFaces(ctx)
	if errors.Is(err, domain.ErrFaceNotFound) {
		if !exists {
			return domain.ErrFaceNotFound
		}
		err = nil
	}
	if err != nil {
		s.logger.Error("failed to remove face", "member_id", id, "error", err)
		s.view.Notify(domain.UserMessage(err))
		return err
	}

	s.view.Notify(fmt.Sprintf("ID %q removed", id))
	return nil
}

// Faces lists the enrolled faces newest first
func (s *Session) Faces(ctx context.Context) ([]domain.EnrolledFace, error) {
	faces, err := s.deps.Faces.List(ctx)
	if errors.Is(err, cache.ErrCorrupt) {
		return faces, nil
	}
	return faces, err
}

func (s *Session) refreshFaces(ctx context.Context) {
	faces, err := s.deps.Faces.List(ctx)
	if err != nil {
		s.logger.Warn("failed to load enrolled faces", "error", err)
		if faces == nil {
			return
		}
	}
	s.view.FacesChanged(faces)
}

func (s *Session) Snapshot() State {
	classification := s.gate.Classification()

	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	return State{
		SessionID:      s.ID(),
		Camera:         s.deps.Source.State().String(),
		Identifier:     s.gate.Identifier(),
		Classification: classification.Kind().String(),
		FaceCount:      classification.Count(),
		Decision:       s.gate.Decision(),
		SubmitEnabled:  s.gate.SubmitEnabled(),
		Pipeline:       s.pipeline.State().String(),
		ConflictPolicy: string(s.pipeline.Policy()),
		Loop:           s.loop.Stats(),
		StartedAt:      startedAt,
	}
}

// Close stops the camera and ends the session
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.stopCamera()
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("enrollment session closed")
	return err
}
