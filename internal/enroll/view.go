package enroll

import (
	"log/slog"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// View is the operator-facing surface driven by the session.
// Implementations must not call back into the session.
type View interface {
	SetSubmitEnabled(enabled bool)
	// SetStatus shows the gate's reason line
	SetStatus(status string)
	// SetTransient shows a short-lived message such as "Processing..."; "" clears it
	SetTransient(message string)
	DrawOverlay(boxes []domain.BoundingBox)
	ClearOverlay()
	// Notify reports the outcome of an operator action
	Notify(message string)
	FacesChanged(faces []domain.EnrolledFace)
	CameraChanged(state camera.State)
	IdentifierChanged(identifier string)
}

type multiView []View

// Views fans every call out to all views, in order
func Views(views ...View) View {
	return multiView(views)
}

func (m multiView) SetSubmitEnabled(enabled bool) {
	for _, v := range m {
		v.SetSubmitEnabled(enabled)
	}
}

func (m multiView) SetStatus(status string) {
	for _, v := range m {
		v.SetStatus(status)
	}
}

func (m multiView) SetTransient(message string) {
	for _, v := range m {
		v.SetTransient(message)
	}
}

func (m multiView) DrawOverlay(boxes []domain.BoundingBox) {
	for _, v := range m {
		v.DrawOverlay(boxes)
	}
}

func (m multiView) ClearOverlay() {
	for _, v := range m {
		v.ClearOverlay()
	}
}

func (m multiView) Notify(message string) {
	for _, v := range m {
		v.Notify(message)
	}
}

func (m multiView) FacesChanged(faces []domain.EnrolledFace) {
	for _, v := range m {
		v.FacesChanged(faces)
	}
}

func (m multiView) CameraChanged(state camera.State) {
	for _, v := range m {
		v.CameraChanged(state)
	}
}

func (m multiView) IdentifierChanged(identifier string) {
	for _, v := range m {
		v.IdentifierChanged(identifier)
	}
}

// LogView writes view updates to a structured logger
type LogView struct {
	logger *slog.Logger
}

func NewLogView(logger *slog.Logger) *LogView {
	return &LogView{logger: logger}
}

func (v *LogView) SetSubmitEnabled(enabled bool) {
	v.logger.Debug("submit control changed", "enabled", enabled)
}

func (v *LogView) SetStatus(status string) {
	v.logger.Debug("status changed", "status", status)
}

func (v *LogView) SetTransient(message string) {
	if message != "" {
		v.logger.Debug("transient status", "message", message)
	}
}

func (v *LogView) DrawOverlay(boxes []domain.BoundingBox) {}

func (v *LogView) ClearOverlay() {}

func (v *LogView) Notify(message string) {
	v.logger.Info("operator notified", "message", message)
}

func (v *LogView) FacesChanged(faces []domain.EnrolledFace) {
	v.logger.Debug("enrolled faces changed", "count", len(faces))
}

func (v *LogView) CameraChanged(state camera.State) {
	v.logger.Info("camera state changed", "state", state.String())
}

func (v *LogView) IdentifierChanged(identifier string) {
	v.logger.Debug("identifier changed", "identifier", identifier)
}

var (
	_ View = multiView(nil)
	_ View = (*LogView)(nil)
)
