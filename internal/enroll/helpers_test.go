package enroll

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder is a View that keeps every call for assertions
type recorder struct {
	mu          sync.Mutex
	events      []string
	enabled     []bool
	statuses    []string
	transients  []string
	overlays    [][]domain.BoundingBox
	notices     []string
	faces       [][]domain.EnrolledFace
	cameras     []camera.State
	identifiers []string
}

func (r *recorder) add(event string) {
	r.events = append(r.events, event)
}

func (r *recorder) SetSubmitEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = append(r.enabled, enabled)
	r.add(fmt.Sprintf("enabled:%t", enabled))
}

func (r *recorder) SetStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	r.add("status:" + status)
}

func (r *recorder) SetTransient(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transients = append(r.transients, message)
	r.add("transient:" + message)
}

func (r *recorder) DrawOverlay(boxes []domain.BoundingBox) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlays = append(r.overlays, boxes)
	r.add(fmt.Sprintf("draw:%d", len(boxes)))
}

func (r *recorder) ClearOverlay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("clear")
}

func (r *recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, message)
	r.add("notify:" + message)
}

func (r *recorder) FacesChanged(faces []domain.EnrolledFace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces = append(r.faces, faces)
	r.add(fmt.Sprintf("faces:%d", len(faces)))
}

func (r *recorder) CameraChanged(state camera.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameras = append(r.cameras, state)
	r.add("camera:" + state.String())
}

func (r *recorder) IdentifierChanged(identifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identifiers = append(r.identifiers, identifier)
	r.add("identifier:" + identifier)
}

func (r *recorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}

func (r *recorder) Enabled() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.enabled...)
}

func (r *recorder) Transients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.transients...)
}

func (r *recorder) Notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

func (r *recorder) Overlays() [][]domain.BoundingBox {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]domain.BoundingBox(nil), r.overlays...)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) LastCamera() (camera.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cameras) == 0 {
		return camera.StateStopped, false
	}
	return r.cameras[len(r.cameras)-1], true
}

func (r *recorder) Identifiers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.identifiers...)
}

func (r *recorder) LastFaces() []domain.EnrolledFace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.faces) == 0 {
		return nil
	}
	return r.faces[len(r.faces)-1]
}

var _ View = (*recorder)(nil)
