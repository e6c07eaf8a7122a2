package enroll

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

func classification(n int) domain.Classification {
	return domain.Classify(make([]domain.Detection, n))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		kind       domain.ClassKind
		identifier string
		want       Decision
	}{
		{name: "none, empty", kind: domain.ClassNone, identifier: "", want: Decision{Reason: ReasonNoFace}},
		{name: "none, set", kind: domain.ClassNone, identifier: "alice", want: Decision{Reason: ReasonNoFace}},
		{name: "single, empty", kind: domain.ClassSingle, identifier: "", want: Decision{Reason: ReasonIdentifierEmpty}},
		{name: "single, set", kind: domain.ClassSingle, identifier: "alice", want: Decision{CanEnroll: true, Reason: ReasonReady}},
		{name: "multiple, empty", kind: domain.ClassMultiple, identifier: "", want: Decision{Reason: ReasonMultipleFaces}},
		{name: "multiple, set", kind: domain.ClassMultiple, identifier: "alice", want: Decision{Reason: ReasonMultipleFaces}},
		{name: "single, whitespace only", kind: domain.ClassSingle, identifier: " \t ", want: Decision{Reason: ReasonIdentifierEmpty}},
		{name: "single, padded", kind: domain.ClassSingle, identifier: "  alice ", want: Decision{CanEnroll: true, Reason: ReasonReady}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.kind, tt.identifier))
		})
	}
}

func TestGate_WritesOnlyOnChange(t *testing.T) {
	view := &recorder{}
	gate := NewGate(view)

	gate.Publish(classification(0))
	gate.Publish(classification(0))
	gate.Publish(classification(0))

	assert.Equal(t, []string{ReasonNoFace}, view.Statuses())
	assert.Equal(t, []bool{false}, view.Enabled())

	gate.SetIdentifier("alice")
	gate.Publish(classification(1))
	gate.Publish(classification(1))

	assert.Equal(t, []string{ReasonNoFace, ReasonReady}, view.Statuses())
	assert.Equal(t, []bool{false, true}, view.Enabled())

	gate.Publish(classification(3))
	assert.Equal(t, []string{ReasonNoFace, ReasonReady, ReasonMultipleFaces}, view.Statuses())
	assert.Equal(t, []bool{false, true, false}, view.Enabled())
}

func TestGate_SuspendForcesDisabled(t *testing.T) {
	view := &recorder{}
	gate := NewGate(view)
	gate.SetIdentifier("alice")
	gate.Publish(classification(1))
	assert.True(t, gate.SubmitEnabled())

	gate.Suspend()
	assert.False(t, gate.SubmitEnabled())

	gate.Publish(classification(1))
	assert.False(t, gate.SubmitEnabled(), "ticks must not re-enable a suspended gate")
	assert.True(t, gate.Decision().CanEnroll)

	gate.Resume()
	assert.True(t, gate.SubmitEnabled())
}

func TestGate_ResetAndStreak(t *testing.T) {
	gate := NewGate(&recorder{})
	gate.SetIdentifier("alice")

	gate.Publish(classification(1))
	gate.Publish(classification(1))
	assert.Equal(t, 2, gate.ReadyStreak())

	gate.Publish(classification(2))
	assert.Equal(t, 0, gate.ReadyStreak())

	gate.Publish(classification(1))
	gate.Reset()
	assert.Equal(t, 0, gate.ReadyStreak())
	assert.Equal(t, domain.ClassNone, gate.Classification().Kind())
	assert.False(t, gate.SubmitEnabled())
}

func TestGate_Refresh(t *testing.T) {
	view := &recorder{}
	gate := NewGate(view)
	gate.Refresh()
	gate.Refresh()

	assert.Equal(t, []string{ReasonNoFace, ReasonNoFace}, view.Statuses())
}
