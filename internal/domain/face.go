package domain

import (
	"time"
)

// Descriptor is the fixed-length feature vector the detector extracts for one face.
// Treat it as immutable once produced.
type Descriptor []float64

// Clone returns a copy that can be handed to another owner
func (d Descriptor) Clone() Descriptor {
	if d == nil {
		return nil
	}
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// EnrolledFace is the unit persisted to the registry and mirrored in the local display cache
type EnrolledFace struct {
	ID            string     `json:"id"`
	Descriptor    Descriptor `json:"descriptor"`
	ImageSnapshot string     `json:"imageUrl,omitempty"`
	CreatedAt     time.Time  `json:"timestamp"`
	RegistryID    string     `json:"registryId,omitempty"`
}

// RegistryFace is a record held by the registry reference server
type RegistryFace struct {
	ID         string
	MemberID   string
	Descriptor Descriptor
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
