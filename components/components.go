// Package components defines ECS components for eye particles.
package components

import "github.com/go-gl/mathgl/mgl64"

// Phase is the lifecycle state of an eye.
type Phase uint8

const (
	PhaseIdle    Phase = iota // Never triggered, or settled after a close
	PhaseOpening              // Triggered, open window still running
	PhaseClosing              // Past the completion threshold, target forced to overshoot
)

// Blink holds the per-eye animation state driven by the two-stage integrator.
// StartMs is only meaningful while Phase is not PhaseIdle.
type Blink struct {
	Phase   Phase
	StartMs float64

	// Scalar openness
	Target float64
	Force  float64
	Value  float64 // Unbounded; negative values are the over-close

	// Position target used by drift mode
	PosTarget mgl64.Vec3
	PosForce  mgl64.Vec3
	PosValue  mgl64.Vec3
}

// Reset returns the eye to its rest state at position p.
func (b *Blink) Reset(p mgl64.Vec3) {
	*b = Blink{PosTarget: p, PosForce: p, PosValue: p}
}
