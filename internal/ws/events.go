package ws

import (
	"time"
)

type EventType string

const (
	EventState             EventType = "state.snapshot"
	EventSubmitEnabled     EventType = "submit.changed"
	EventStatus            EventType = "status.changed"
	EventTransient         EventType = "status.transient"
	EventOverlay           EventType = "overlay.updated"
	EventOverlayCleared    EventType = "overlay.cleared"
	EventNotice            EventType = "notice"
	EventFacesChanged      EventType = "faces.changed"
	EventCameraChanged     EventType = "camera.changed"
	EventIdentifierChanged EventType = "identifier.changed"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
