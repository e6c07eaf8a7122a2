package enroll

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// LoopConfig holds the detection loop cadence and the overlay surface size
type LoopConfig struct {
	Interval time.Duration
	// DisplayWidth/DisplayHeight of zero draw boxes in frame coordinates
	DisplayWidth  int
	DisplayHeight int
}

// LoopStats are cumulative counters since the loop was created
type LoopStats struct {
	Ticks         int64 `json:"ticks"`
	Detections    int64 `json:"detections"`
	SkippedIdle   int64 `json:"skippedIdle"`
	SkippedBusy   int64 `json:"skippedBusy"`
	Failures      int64 `json:"failures"`
	DiscardedLate int64 `json:"discardedLate"`
}

// Loop polls the detector at a fixed cadence. At most one detection is in
// flight; a tick that finds one running is dropped.
type Loop struct {
	config   LoopConfig
	source   camera.Source
	detector detector.Detector
	gate     *Gate
	view     View
	logger   *slog.Logger

	inFlight   atomic.Bool
	generation atomic.Uint64

	mu sync.Mutex
	// stopped is set by Stop and cleared by Start
	stopped        bool
	cancel         context.CancelFunc
	inFlightCancel context.CancelFunc
	wg             sync.WaitGroup

	ticks, detections, skippedIdle, skippedBusy, failures, discarded atomic.Int64
}

func NewLoop(config LoopConfig, source camera.Source, det detector.Detector, gate *Gate, view View, logger *slog.Logger) *Loop {
	return &Loop{
		config:   config,
		source:   source,
		detector: det,
		gate:     gate,
		view:     view,
		logger:   logger,
	}
}

// Start begins ticking until Stop or ctx is done. Starting a running loop is a no-op.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.stopped = false

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(runCtx)
	}()

	l.logger.Info("detection loop started", "interval", l.config.Interval.String())
}

func (l *Loop) run(ctx context.Context) {
	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Running reports whether the ticker is active
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Tick runs one poll cycle and reports whether a detection was issued.
// The detection itself completes asynchronously. A stopped loop never
// issues a detection, even when the tick was already past the state check.
func (l *Loop) Tick(ctx context.Context) bool {
	l.ticks.Add(1)
	gen := l.generation.Load()

	if l.source.State() != camera.StatePlaying {
		l.skippedIdle.Add(1)
		return false
	}

	if !l.inFlight.CompareAndSwap(false, true) {
		l.skippedBusy.Add(1)
		return false
	}

	l.mu.Lock()
	if l.stopped || gen != l.generation.Load() {
		l.mu.Unlock()
		l.inFlight.Store(false)
		l.skippedIdle.Add(1)
		return false
	}
	detectCtx, cancel := context.WithCancel(ctx)
	l.inFlightCancel = cancel
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer l.inFlight.Store(false)
		defer cancel()
		l.detect(detectCtx, gen)
	}()

	return true
}

func (l *Loop) detect(ctx context.Context, gen uint64) {
	frame, err := l.source.Frame(ctx)
	if err != nil {
		l.failures.Add(1)
		l.logger.Debug("frame unavailable", "error", err)
		return
	}

	detections, err := l.detector.Detect(ctx, frame)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation.Load() {
		l.discarded.Add(1)
		return
	}

	if err != nil {
		// keep the previous classification, the next tick retries
		l.failures.Add(1)
		l.logger.Warn("face detection failed", "error", err)
		return
	}

	l.detections.Add(1)
	classification := domain.Classify(detections)

	l.view.DrawOverlay(l.scale(frame, detections))
	l.gate.Publish(classification)
}

func (l *Loop) scale(frame *camera.Frame, detections []domain.Detection) []domain.BoundingBox {
	dstW, dstH := l.config.DisplayWidth, l.config.DisplayHeight
	if dstW <= 0 || dstH <= 0 {
		dstW, dstH = frame.Width, frame.Height
	}

	boxes := make([]domain.BoundingBox, 0, len(detections))
	for _, d := range detections {
		boxes = append(boxes, d.Box.Scale(frame.Width, frame.Height, dstW, dstH))
	}
	return boxes
}

// Stop cancels the ticker and any in-flight detection, clears the overlay and
// resets the classification. Results still arriving afterwards are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, inFlightCancel := l.cancel, l.inFlightCancel
	l.cancel, l.inFlightCancel = nil, nil
	l.stopped = true
	l.generation.Add(1)
	l.view.ClearOverlay()
	l.gate.Reset()
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if inFlightCancel != nil {
		inFlightCancel()
	}
	l.wg.Wait()

	if cancel != nil {
		l.logger.Info("detection loop stopped")
	}
}

func (l *Loop) Stats() LoopStats {
	return LoopStats{
		Ticks:         l.ticks.Load(),
		Detections:    l.detections.Load(),
		SkippedIdle:   l.skippedIdle.Load(),
		SkippedBusy:   l.skippedBusy.Load(),
		Failures:      l.failures.Load(),
		DiscardedLate: l.discarded.Load(),
	}
}
