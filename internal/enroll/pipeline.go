package enroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/registry"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/snapshot"
)

// StatusProcessing is the transient status shown while the registry call runs
const StatusProcessing = "Processing..."

// PipelineState is the enrollment pipeline's position
type PipelineState int32

const (
	StateIdle PipelineState = iota
	StateDetecting
	StateValidating
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s PipelineState) String() string {
	switch s {
	case StateDetecting:
		return "detecting"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ConflictPolicy selects who resolves a duplicate identifier
type ConflictPolicy string

const (
	// ConflictConfirm checks the display cache and asks the operator before replacing
	ConflictConfirm ConflictPolicy = "confirm"
	// ConflictRemote sends the create as is and lets the registry overwrite
	ConflictRemote ConflictPolicy = "remote"
)

// ParseConflictPolicy validates a CONFLICT_POLICY value. Empty means confirm.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case ConflictConfirm, "":
		return ConflictConfirm, nil
	case ConflictRemote:
		return ConflictRemote, nil
	default:
		return "", fmt.Errorf("unknown conflict policy: %s (supported: %s, %s)",
			s, ConflictConfirm, ConflictRemote)
	}
}

// Confirmer asks the operator whether an enrolled identifier may be replaced
type Confirmer interface {
	ConfirmOverwrite(ctx context.Context, identifier string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, identifier string) (bool, error)

func (f ConfirmFunc) ConfirmOverwrite(ctx context.Context, identifier string) (bool, error) {
	return f(ctx, identifier)
}

// AlwaysConfirm approves every overwrite, for requests that already carry the operator's consent
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// Registry is the part of the registry client the pipeline and session use
type Registry interface {
	Submit(ctx context.Context, in registry.SubmitInput) (*domain.EnrolledFace, error)
	Remove(ctx context.Context, id string) error
}

// FaceIndex answers whether an identifier is already enrolled locally
type FaceIndex interface {
	Has(ctx context.Context, id string) (bool, error)
}

// Pipeline runs one capture, validate and submit sequence at a time
type Pipeline struct {
	source   camera.Source
	detector detector.Detector
	gate     *Gate
	view     View
	registry Registry
	faces    FaceIndex
	policy   ConflictPolicy
	logger   *slog.Logger

	state atomic.Int32
	crop  func(*camera.Frame, domain.BoundingBox) (string, error)
}

func NewPipeline(
	source camera.Source,
	det detector.Detector,
	gate *Gate,
	view View,
	reg Registry,
	faces FaceIndex,
	policy ConflictPolicy,
	logger *slog.Logger,
) *Pipeline {
	if policy == "" {
		policy = ConflictConfirm
	}
	return &Pipeline{
		source:   source,
		detector: det,
		gate:     gate,
		view:     view,
		registry: reg,
		faces:    faces,
		policy:   policy,
		logger:   logger,
		crop:     snapshot.Crop,
	}
}

func (p *Pipeline) State() PipelineState {
	return PipelineState(p.state.Load())
}

func (p *Pipeline) Policy() ConflictPolicy {
	return p.policy
}

// Run enrolls the face currently in front of the camera under identifier.
// confirm may be nil, in which case an existing identifier fails with ErrFaceExists
// under the confirm policy. A second call while one is running fails with
// ErrEnrollmentInProgress.
func (p *Pipeline) Run(ctx context.Context, identifier string, confirm Confirmer) (*domain.EnrolledFace, error) {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateDetecting)) {
		return nil, domain.ErrEnrollmentInProgress
	}

	p.gate.Suspend()
	defer func() {
		p.view.SetTransient("")
		p.state.Store(int32(StateIdle))
		p.gate.Resume()
	}()

	face, err := p.run(ctx, identifier, confirm)
	if err != nil {
		p.state.Store(int32(StateFailed))
		p.logFailure(identifier, err)
		p.view.Notify(domain.UserMessage(err))
		return nil, err
	}

	p.state.Store(int32(StateSuccess))
	p.gate.SetIdentifier("")
	p.view.IdentifierChanged("")
	p.view.Notify(fmt.Sprintf("ID %q enrolled", face.ID))

	return face, nil
}

func (p *Pipeline) run(ctx context.Context, identifier string, confirm Confirmer) (*domain.EnrolledFace, error) {
	id := strings.TrimSpace(identifier)

	if p.source.State() != camera.StatePlaying {
		return nil, domain.ErrCameraInactive
	}
	if id == "" {
		return nil, domain.ErrIdentifierRequired
	}

	// re-detect on a fresh frame, the loop's last result may be stale
	frame, err := p.source.Frame(ctx)
	if err != nil {
		return nil, err
	}

	detections, err := p.detector.Detect(ctx, frame)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, domain.ErrDetectorFailed.WithError(err)
	}

	p.state.Store(int32(StateValidating))

	classification := domain.Classify(detections)
	switch classification.Kind() {
	case domain.ClassNone:
		return nil, domain.ErrNoFaceDetected
	case domain.ClassMultiple:
		return nil, domain.ErrMultipleFaces
	}
	detection, _ := classification.Single()

	replace, err := p.resolveConflict(ctx, id, confirm)
	if err != nil {
		return nil, err
	}

	p.state.Store(int32(StateSubmitting))
	p.view.SetTransient(StatusProcessing)

	image, err := p.crop(frame, detection.Box)
	if err != nil {
		p.logger.Warn("failed to crop face snapshot", "member_id", id, "error", err)
		image = ""
	}

	return p.registry.Submit(ctx, registry.SubmitInput{
		ID:            id,
		Descriptor:    detection.Descriptor.Clone(),
		ImageSnapshot: image,
		Replace:       replace,
	})
}

// resolveConflict reports whether the registry entry must be replaced
func (p *Pipeline) resolveConflict(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if p.policy == ConflictRemote {
		return false, nil
	}

	exists, err := p.faces.Has(ctx, id)
	if err != nil {
		p.logger.Warn("display cache unavailable, skipping duplicate check", "member_id", id, "error", err)
		return false, nil
	}
	if !exists {
		return false, nil
	}

	if confirm == nil {
		return false, domain.ErrFaceExists
	}

	ok, err := confirm.ConfirmOverwrite(ctx, id)
	if err != nil {
		return false, fmt.Errorf("confirm overwrite: %w", err)
	}
	if !ok {
		return false, domain.ErrOverwriteDeclined
	}
	return true, nil
}

func (p *Pipeline) logFailure(identifier string, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindConflict:
		p.logger.Info("enrollment rejected", "member_id", identifier, "error", err)
	default:
		p.logger.Error("enrollment failed", "member_id", identifier, "error", err)
	}
}
