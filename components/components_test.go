package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhaseOpening, "Opening"},
		{PhaseClosing, "Closing"},
		{Phase(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
	if PhaseCount() != 3 {
		t.Errorf("expected 3 phases, got %d", PhaseCount())
	}
}

func TestBlinkReset(t *testing.T) {
	p := mgl64.Vec3{0, 1, 0}
	b := Blink{Phase: PhaseClosing, StartMs: 100, Target: -0.15, Force: 0.4, Value: 0.7}
	b.Reset(p)

	if b.Phase != PhaseIdle || b.Value != 0 || b.Force != 0 || b.Target != 0 {
		t.Errorf("expected zeroed scalar state, got %+v", b)
	}
	if b.PosValue != p || b.PosTarget != p || b.PosForce != p {
		t.Errorf("expected position state at %v, got %+v", p, b)
	}
}
