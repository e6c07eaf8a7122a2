// Package camera defines the frame source boundary of the enrollment station.
package camera

import (
	"context"
	"time"
)

// State is the playback state of a frame source
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "stopped"
	}
}

// Constraints mirror the media request {audio:false, video:{width, height, facingMode}}
type Constraints struct {
	Audio      bool   `json:"audio"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FacingMode string `json:"facingMode"`
}

// DefaultConstraints returns the front-camera portrait request used by the station
func DefaultConstraints() Constraints {
	return Constraints{
		Audio:      false,
		Width:      300,
		Height:     480,
		FacingMode: "user",
	}
}

// Frame is one encoded image grabbed from the source.
// Data is shared by reference and must not be modified.
type Frame struct {
	Seq         uint64
	Data        []byte
	ContentType string
	Width       int
	Height      int
	CapturedAt  time.Time
}

// Source produces live frames once started
type Source interface {
	// Start acquires the camera. Permission and availability failures are
	// returned as domain errors carrying the device's own message.
	Start(ctx context.Context, c Constraints) error
	// Stop releases the camera. Stopping a stopped source is a no-op.
	Stop() error
	State() State
	// Frame returns the current frame, or ErrCameraInactive when not playing
	Frame(ctx context.Context) (*Frame, error)
}
