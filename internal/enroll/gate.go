package enroll

import (
	"strings"
	"sync"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// Gate reasons, shown on the status line
const (
	ReasonNoFace          = "No face detected"
	ReasonMultipleFaces   = "Multiple faces detected"
	ReasonIdentifierEmpty = "Enter an identifier"
	ReasonReady           = "Ready to enroll"
)

// Decision is the gate's verdict for one (classification, identifier) pair
type Decision struct {
	CanEnroll bool   `json:"canEnroll"`
	Reason    string `json:"reason"`
}

// Evaluate is pure. Reasons are ranked no face, then multiple faces, then empty identifier.
func Evaluate(kind domain.ClassKind, identifier string) Decision {
	switch kind {
	case domain.ClassNone:
		return Decision{Reason: ReasonNoFace}
	case domain.ClassMultiple:
		return Decision{Reason: ReasonMultipleFaces}
	}
	if strings.TrimSpace(identifier) == "" {
		return Decision{Reason: ReasonIdentifierEmpty}
	}
	return Decision{CanEnroll: true, Reason: ReasonReady}
}

// Gate holds the latest classification and identifier and keeps the
// submit control and status line in sync with them.
type Gate struct {
	view View

	mu             sync.Mutex
	classification domain.Classification
	identifier     string
	suspended      bool
	readyStreak    int

	applied     bool
	lastEnabled bool
	lastStatus  string
}

func NewGate(view View) *Gate {
	return &Gate{view: view}
}

// Publish records one tick's classification
func (g *Gate) Publish(c domain.Classification) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.classification = c
	if Evaluate(c.Kind(), g.identifier).CanEnroll {
		g.readyStreak++
	} else {
		g.readyStreak = 0
	}
	g.apply()
}

func (g *Gate) SetIdentifier(identifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if identifier == g.identifier {
		return
	}
	g.identifier = identifier
	g.readyStreak = 0
	g.apply()
}

func (g *Gate) Identifier() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.identifier
}

func (g *Gate) Classification() domain.Classification {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.classification
}

// Decision returns the current verdict, ignoring suspension
func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Evaluate(g.classification.Kind(), g.identifier)
}

// SubmitEnabled reports the submit control state as last written
func (g *Gate) SubmitEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastEnabled
}

// ReadyStreak counts consecutive ticks that were enrollable
func (g *Gate) ReadyStreak() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readyStreak
}

// Reset drops the classification back to None
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.classification = domain.Classification{}
	g.readyStreak = 0
	g.apply()
}

// Suspend forces the submit control off until Resume
func (g *Gate) Suspend() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.suspended = true
	g.apply()
}

func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.suspended = false
	g.apply()
}

// Refresh re-writes the current state to the view
func (g *Gate) Refresh() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.applied = false
	g.apply()
}

// apply must be called with g.mu held. Writes only what changed.
func (g *Gate) apply() {
	d := Evaluate(g.classification.Kind(), g.identifier)
	enabled := d.CanEnroll && !g.suspended

	if !g.applied || enabled != g.lastEnabled {
		g.view.SetSubmitEnabled(enabled)
		g.lastEnabled = enabled
	}
	if !g.applied || d.Reason != g.lastStatus {
		g.view.SetStatus(d.Reason)
		g.lastStatus = d.Reason
	}
	g.applied = true
}
