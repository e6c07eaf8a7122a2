package ws

import (
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/camera"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// FaceItem is the list entry sent to the UI
type FaceItem struct {
	ID            string `json:"id"`
	ImageSnapshot string `json:"imageUrl,omitempty"`
	CreatedAt     string `json:"timestamp"`
}

// View publishes session updates as hub events
type View struct {
	hub *Hub
}

func NewView(hub *Hub) *View {
	return &View{hub: hub}
}

func (v *View) SetSubmitEnabled(enabled bool) {
	v.hub.Broadcast(EventSubmitEnabled, map[string]bool{"enabled": enabled})
}

func (v *View) SetStatus(status string) {
	v.hub.Broadcast(EventStatus, map[string]string{"status": status})
}

func (v *View) SetTransient(message string) {
	v.hub.Broadcast(EventTransient, map[string]string{"message": message})
}

func (v *View) DrawOverlay(boxes []domain.BoundingBox) {
	if boxes == nil {
		boxes = []domain.BoundingBox{}
	}
	v.hub.Broadcast(EventOverlay, map[string]interface{}{"boxes": boxes})
}

func (v *View) ClearOverlay() {
	v.hub.Broadcast(EventOverlayCleared, nil)
}

func (v *View) Notify(message string) {
	v.hub.Broadcast(EventNotice, map[string]string{"message": message})
}

func (v *View) FacesChanged(faces []domain.EnrolledFace) {
	v.hub.Broadcast(EventFacesChanged, map[string]interface{}{"faces": FaceItems(faces)})
}

func (v *View) CameraChanged(state camera.State) {
	v.hub.Broadcast(EventCameraChanged, map[string]string{"state": state.String()})
}

func (v *View) IdentifierChanged(identifier string) {
	v.hub.Broadcast(EventIdentifierChanged, map[string]string{"identifier": identifier})
}

// FaceItems maps enrolled faces to list entries, keeping order
func FaceItems(faces []domain.EnrolledFace) []FaceItem {
	items := make([]FaceItem, 0, len(faces))
	for _, f := range faces {
		items = append(items, FaceItem{
			ID:            f.ID,
			ImageSnapshot: f.ImageSnapshot,
			CreatedAt:     f.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return items
}
