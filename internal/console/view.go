// Package console renders the enrollment session on a terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// View shows the gate status on a spinner line and prints notices above it
type View struct {
	out io.Writer
	bar *progressbar.ProgressBar

	mu        sync.Mutex
	status    string
	transient string
	ready     bool
	notices   []string
}

// New creates a console view writing to w (usually os.Stderr)
func New(w io.Writer) *View {
	return &View{
		out: w,
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Waiting for camera"),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// describe must be called with v.mu held
func (v *View) describe() {
	line := v.status
	if v.transient != "" {
		line = v.transient
	} else if v.ready {
		line = "[ready] " + line
	}
	v.bar.Describe(line)
}

func (v *View) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ready = enabled
	v.describe()
}

func (v *View) SetStatus(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = status
	v.describe()
}

func (v *View) SetTransient(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.transient = message
	v.describe()
}

// DrawOverlay advances the spinner once per detection tick
func (v *View) DrawOverlay(boxes []domain.BoundingBox) {
	_ = v.bar.Add(1)
}

func (v *View) ClearOverlay() {}

func (v *View) Notify(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, message)
	_ = v.bar.Clear()
	_, _ = fmt.Fprintln(v.out, message)
}

func (v *View) FacesChanged(faces []domain.EnrolledFace) {}

func (v *View) CameraChanged(state camera.State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if state != camera.StatePlaying {
		v.status = "Camera " + state.String()
		v.describe()
	}
}

func (v *View) IdentifierChanged(identifier string) {}

// Notices returns everything printed through Notify
func (v *View) Notices() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.notices...)
}

// Close removes the spinner line
func (v *View) Close() error {
	return v.bar.Finish()
}
