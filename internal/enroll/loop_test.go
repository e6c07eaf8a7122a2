package enroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	cameramock "github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera/mock"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
	detectormock "github.com/saturnino-fabrica-de-software/rekko-enroll/internal/detector/mock"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

type loopFixture struct {
	source   *cameramock.Source
	detector *detectormock.Detector
	gate     *Gate
	view     *recorder
	loop     *Loop
}

func newLoopFixture(t *testing.T, faces int, config LoopConfig) *loopFixture {
	t.Helper()
	f := &loopFixture{
		source:   cameramock.New(),
		detector: detectormock.New(faces),
		view:     &recorder{},
	}
	require.NoError(t, f.source.Start(context.Background(), camera.DefaultConstraints()))
	if config.Interval == 0 {
		config.Interval = time.Hour
	}
	f.gate = NewGate(f.view)
	f.gate.SetIdentifier("alice")
	f.loop = NewLoop(config, f.source, f.detector, f.gate, f.view, testLogger())
	t.Cleanup(f.loop.Stop)
	return f
}

func (f *loopFixture) waitKind(t *testing.T, kind domain.ClassKind) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.gate.Classification().Kind() == kind
	}, waitFor, tick)
}

func TestLoop_TickClassifies(t *testing.T) {
	tests := []struct {
		name  string
		faces int
		want  domain.ClassKind
	}{
		{name: "no face", faces: 0, want: domain.ClassNone},
		{name: "single face", faces: 1, want: domain.ClassSingle},
		{name: "multiple faces", faces: 2, want: domain.ClassMultiple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoopFixture(t, tt.faces, LoopConfig{})

			require.True(t, f.loop.Tick(context.Background()))
			require.Eventually(t, func() bool {
				return f.loop.Stats().Detections == 1
			}, waitFor, tick)

			assert.Equal(t, tt.want, f.gate.Classification().Kind())
			assert.Equal(t, tt.faces, f.gate.Classification().Count())
			overlays := f.view.Overlays()
			require.Len(t, overlays, 1)
			assert.Len(t, overlays[0], tt.faces)
		})
	}
}

func TestLoop_ScalesBoxesToDisplay(t *testing.T) {
	f := newLoopFixture(t, 1, LoopConfig{DisplayWidth: 600, DisplayHeight: 960})

	require.True(t, f.loop.Tick(context.Background()))
	f.waitKind(t, domain.ClassSingle)

	frame, err := f.source.Frame(context.Background())
	require.NoError(t, err)
	detections, err := f.detector.Detect(context.Background(), frame)
	require.NoError(t, err)
	raw := detections[0].Box

	overlays := f.view.Overlays()
	require.Len(t, overlays, 1)
	require.Len(t, overlays[0], 1)
	assert.InDelta(t, raw.X*2, overlays[0][0].X, 1e-9)
	assert.InDelta(t, raw.Y*2, overlays[0][0].Y, 1e-9)
	assert.InDelta(t, raw.Width*2, overlays[0][0].Width, 1e-9)
	assert.InDelta(t, raw.Height*2, overlays[0][0].Height, 1e-9)
}

func TestLoop_SingleFlight(t *testing.T) {
	f := newLoopFixture(t, 1, LoopConfig{})
	release := f.detector.Hold()

	require.True(t, f.loop.Tick(context.Background()))
	require.Eventually(t, func() bool { return f.detector.Calls() == 1 }, waitFor, tick)

	assert.False(t, f.loop.Tick(context.Background()))
	assert.False(t, f.loop.Tick(context.Background()))
	assert.Equal(t, 1, f.detector.Calls(), "a busy tick must not start a second inference")
	assert.Equal(t, int64(2), f.loop.Stats().SkippedBusy)

	release()
	f.waitKind(t, domain.ClassSingle)

	require.Eventually(t, func() bool {
		return f.loop.Tick(context.Background())
	}, waitFor, tick)
}

func TestLoop_SkipsWhenCameraInactive(t *testing.T) {
	for _, state := range []camera.State{camera.StateStopped, camera.StatePaused, camera.StateEnded} {
		t.Run(state.String(), func(t *testing.T) {
			f := newLoopFixture(t, 1, LoopConfig{})
			f.source.SetState(state)

			assert.False(t, f.loop.Tick(context.Background()))
			assert.Equal(t, 0, f.detector.Calls())
			assert.Equal(t, int64(1), f.loop.Stats().SkippedIdle)
		})
	}
}

func TestLoop_DetectorFailureKeepsClassification(t *testing.T) {
	f := newLoopFixture(t, 1, LoopConfig{})

	require.True(t, f.loop.Tick(context.Background()))
	f.waitKind(t, domain.ClassSingle)

	f.detector.SetError(errors.New("model crashed"))
	require.Eventually(t, func() bool {
		return f.loop.Tick(context.Background())
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		return f.loop.Stats().Failures == 1
	}, waitFor, tick)

	assert.Equal(t, domain.ClassSingle, f.gate.Classification().Kind())
	assert.True(t, f.gate.SubmitEnabled())
}

func TestLoop_StopDiscardsInFlight(t *testing.T) {
	f := newLoopFixture(t, 1, LoopConfig{})
	_ = f.detector.Hold()

	require.True(t, f.loop.Tick(context.Background()))
	require.Eventually(t, func() bool { return f.detector.Calls() == 1 }, waitFor, tick)

	f.loop.Stop()

	assert.Equal(t, int64(1), f.loop.Stats().DiscardedLate)
	assert.Equal(t, domain.ClassNone, f.gate.Classification().Kind())
	assert.Empty(t, f.view.Overlays())
	assert.Contains(t, f.view.Events(), "clear")
	assert.False(t, f.gate.SubmitEnabled())
}

func TestLoop_StartStop(t *testing.T) {
	f := newLoopFixture(t, 1, LoopConfig{Interval: 5 * time.Millisecond})

	f.loop.Start(context.Background())
	f.loop.Start(context.Background())
	assert.True(t, f.loop.Running())

	require.Eventually(t, func() bool { return f.detector.Calls() >= 2 }, waitFor, tick)

	f.loop.Stop()
	assert.False(t, f.loop.Running())

	calls := f.detector.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, f.detector.Calls(), "no detection after stop")

	events := f.view.Events()
	assert.Equal(t, "clear", lastDrawOrClear(events))
}

func TestLoop_TickAfterStopIsIgnored(t *testing.T) {
	f := newLoopFixture(t, 1, LoopConfig{})
	ctx := context.Background()

	f.loop.Start(ctx)
	f.loop.Stop()

	assert.False(t, f.loop.Tick(ctx), "a stopped loop must not issue detections")
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, f.detector.Calls())
	assert.Equal(t, domain.ClassNone, f.gate.Classification().Kind())
	assert.False(t, f.gate.SubmitEnabled())
	assert.Empty(t, f.view.Overlays())

	// a restart resumes ticking
	f.loop.Start(ctx)
	assert.True(t, f.loop.Tick(ctx))
	f.waitKind(t, domain.ClassSingle)
}

func lastDrawOrClear(events []string) string {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] == "clear" || len(events[i]) > 5 && events[i][:5] == "draw:" {
			return events[i]
		}
	}
	return ""
}
