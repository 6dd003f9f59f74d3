// Package systems provides ECS systems for the eye particles.
package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/eyeball/components"
	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/sampling"
)

// EyeMode selects how an eye reacts to a passing contact.
type EyeMode uint8

const (
	// EyeScale opens the eye in place and lifts it along its normal.
	EyeScale EyeMode = iota
	// EyeDrift also pushes the eye across the surface away from the contact.
	EyeDrift
)

// ParseEyeMode maps a config string to an EyeMode.
func ParseEyeMode(s string) (EyeMode, error) {
	switch s {
	case "scale", "":
		return EyeScale, nil
	case "drift":
		return EyeDrift, nil
	}
	return EyeScale, fmt.Errorf("unknown eye mode %q", s)
}

// EyeStats summarizes the last Update.
type EyeStats struct {
	Triggered int     // Eyes (re)triggered this tick
	Opening   int     // Eyes in PhaseOpening
	Closing   int     // Eyes in PhaseClosing
	MeanValue float64 // Mean openness, unclamped
	MaxScale  float64
}

// EyeSystem integrates the open/close response of every eye entity.
type EyeSystem struct {
	cfg          config.EyesConfig
	mode         EyeMode
	sphereRadius float64
	rng          *rand.Rand

	nowMs float64
	stats EyeStats

	mapper *ecs.Map3[components.Surface, components.Blink, components.Instance]
	filter *ecs.Filter3[components.Surface, components.Blink, components.Instance]
}

// NewEyeSystem creates an eye system over world. rng drives trigger jitter.
func NewEyeSystem(world *ecs.World, cfg *config.Config, rng *rand.Rand) (*EyeSystem, error) {
	mode, err := ParseEyeMode(cfg.Eyes.Mode)
	if err != nil {
		return nil, err
	}
	return &EyeSystem{
		cfg:          cfg.Eyes,
		mode:         mode,
		sphereRadius: cfg.Sphere.Radius,
		rng:          rng,
		mapper:       ecs.NewMap3[components.Surface, components.Blink, components.Instance](world),
		filter:       ecs.NewFilter3[components.Surface, components.Blink, components.Instance](world),
	}, nil
}

// Spawn creates one entity per particle. Surface.Index follows the order
// of particles.
func (s *EyeSystem) Spawn(particles []sampling.Particle) []ecs.Entity {
	entities := make([]ecs.Entity, len(particles))
	for i, p := range particles {
		surf := components.Surface{
			Position:   p.Position,
			Normal:     p.Normal,
			Radius:     p.Radius,
			SizeFactor: p.SizeFactor,
			Index:      int32(i),
		}
		var blink components.Blink
		blink.Reset(p.Position)
		inst := components.Instance{Position: p.Position}

		entities[i] = s.mapper.NewEntity(&surf, &blink, &inst)
	}
	return entities
}

// Now returns the system clock in milliseconds.
func (s *EyeSystem) Now() float64 { return s.nowMs }

// Stats returns the summary of the last Update.
func (s *EyeSystem) Stats() EyeStats { return s.stats }

// Mode returns the configured reaction mode.
func (s *EyeSystem) Mode() EyeMode { return s.mode }

// Update advances every eye by dtMs. contact is in the sphere's local frame
// and may be nil; velocity is its frame-to-frame delta.
func (s *EyeSystem) Update(dtMs float64, contact *mgl64.Vec3, velocity mgl64.Vec3) {
	s.nowMs += dtMs
	now := s.nowMs
	cfg := &s.cfg

	fs := mgl64.Clamp(dtMs/cfg.DampingMs, 0, 1)
	moving := contact != nil && velocity.Len() > cfg.MinContactSpeed
	triggerSq := cfg.TriggerRadius * cfg.TriggerRadius

	var stats EyeStats
	var valueSum float64
	n := 0

	query := s.filter.Query()
	for query.Next() {
		surf, blink, inst := query.Get()

		if moving && surf.Position.Sub(*contact).LenSqr() < triggerSq {
			s.trigger(surf, blink, *contact, velocity, now)
			stats.Triggered++
		}

		s.advancePhase(surf, blink, now)
		s.integrate(blink, fs)
		s.derive(surf, blink, inst)

		switch blink.Phase {
		case components.PhaseOpening:
			stats.Opening++
		case components.PhaseClosing:
			stats.Closing++
		}
		valueSum += blink.Value
		stats.MaxScale = math.Max(stats.MaxScale, inst.Scale)
		n++
	}

	if n > 0 {
		stats.MeanValue = valueSum / float64(n)
	}
	s.stats = stats
}

// trigger opens the eye, or refreshes its open window if already open.
func (s *EyeSystem) trigger(surf *components.Surface, b *components.Blink, contact, velocity mgl64.Vec3, now float64) {
	cfg := &s.cfg

	b.Phase = components.PhaseOpening
	b.StartMs = now + (s.rng.Float64()*2-1)*cfg.JitterMs
	b.Target = cfg.OpenTarget

	if s.mode != EyeDrift {
		return
	}

	// Push along the surface, away from the contact
	away := tangent(surf.Position.Sub(contact), surf.Normal)
	if l := away.Len(); l > 0 {
		b.PosTarget = surf.Position.Add(away.Mul(cfg.DriftPush * surf.Radius / l))
	}
	b.PosForce = b.PosForce.Add(tangent(velocity, surf.Normal).Mul(cfg.DriftImpulse))
}

// advancePhase moves Opening to Closing past the completion threshold and
// Closing to Idle once the close delay has fully elapsed. An eye always
// passes through Closing, at most one transition per tick.
func (s *EyeSystem) advancePhase(surf *components.Surface, b *components.Blink, now float64) {
	if b.Phase == components.PhaseIdle {
		return
	}

	progress := (now - b.StartMs) / s.cfg.CloseDelayMs
	switch {
	case b.Phase == components.PhaseOpening && progress >= math.Min(s.cfg.Completion, 1):
		b.Phase = components.PhaseClosing
		b.Target = s.cfg.Overshoot
		b.PosTarget = surf.Position
	case b.Phase == components.PhaseClosing && progress >= 1:
		b.Phase = components.PhaseIdle
		b.Target = 0
		b.PosTarget = surf.Position
	}
}

// integrate runs the two-stage leaky integrator on the openness and, in
// drift mode, on the position.
func (s *EyeSystem) integrate(b *components.Blink, fs float64) {
	b.Force += (b.Target - b.Value) * fs
	b.Value += (b.Force - b.Value) * fs

	if s.mode == EyeDrift {
		b.PosForce = b.PosForce.Add(b.PosTarget.Sub(b.PosValue).Mul(fs))
		b.PosValue = b.PosValue.Add(b.PosForce.Sub(b.PosValue).Mul(fs))
	}
}

// derive writes the render transform for an eye.
func (s *EyeSystem) derive(surf *components.Surface, b *components.Blink, inst *components.Instance) {
	inst.Scale = s.cfg.BaseScale * math.Max(0, b.Value)

	if s.mode == EyeDrift {
		if l := b.PosValue.Len(); l > 0 {
			inst.Position = b.PosValue.Mul(s.sphereRadius / l)
		} else {
			inst.Position = surf.Position
		}
		return
	}
	inst.Position = surf.Position.Add(surf.Normal.Mul(surf.Radius * inst.Scale * s.cfg.OffsetFactor))
}

// tangent removes the component of v along unit normal n.
func tangent(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}
