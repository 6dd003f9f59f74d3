package sampling

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// RelaxMode selects how offsets are applied within one pass.
type RelaxMode uint8

const (
	// ModeSnapshot computes every offset against the positions from the start
	// of the pass, then applies them together. Order independent.
	ModeSnapshot RelaxMode = iota
	// ModeInPlace applies each offset immediately, so later points in the
	// pass see earlier points already moved.
	ModeInPlace
)

// ParseRelaxMode maps a config string to a RelaxMode.
func ParseRelaxMode(s string) (RelaxMode, error) {
	switch s {
	case "snapshot", "":
		return ModeSnapshot, nil
	case "in_place":
		return ModeInPlace, nil
	}
	return ModeSnapshot, fmt.Errorf("unknown relax mode %q", s)
}

func (m RelaxMode) String() string {
	if m == ModeInPlace {
		return "in_place"
	}
	return "snapshot"
}

// Default relaxation parameters.
const (
	DefaultRelaxIterations = 30
	DefaultRelaxDamping    = 0.015
	DefaultRelaxMinKeep    = 0.9

	// Passes stop once backtracking has shrunk the step below this share of
	// the configured damping.
	minDampingShare = 1e-4
)

// RelaxStats describes one Relax run.
type RelaxStats struct {
	Accepted     int     // Passes kept
	Rejected     int     // Passes rolled back, each halving the step
	FinalDamping float64 // Step scale when the run stopped
}

// Relaxer spreads overlapping points apart with inverse-distance repulsion
// and pins them back onto the sphere after every step.
//
// A pass is kept only if it does not widen the nearest-neighbour spread and
// keeps the minimum distance at or above MinKeep times the starting minimum.
// A rejected pass is rolled back and the step is halved.
type Relaxer struct {
	Iterations   int
	Damping      float64
	Mode         RelaxMode
	SphereRadius float64
	MinKeep      float64

	offsets []mgl64.Vec3
	trial   []mgl64.Vec3
}

// NewRelaxer creates a relaxer with the default iteration count and damping.
func NewRelaxer(sphereRadius float64) *Relaxer {
	return &Relaxer{
		Iterations:   DefaultRelaxIterations,
		Damping:      DefaultRelaxDamping,
		Mode:         ModeSnapshot,
		SphereRadius: sphereRadius,
		MinKeep:      DefaultRelaxMinKeep,
	}
}

// Relax moves points in place. radii[i] is the interaction radius of point i;
// two points repel while closer than the sum of their radii.
func (r *Relaxer) Relax(points []mgl64.Vec3, radii []float64) RelaxStats {
	if len(points) != len(radii) {
		panic(fmt.Sprintf("sampling: %d points but %d radii", len(points), len(radii)))
	}

	stats := RelaxStats{FinalDamping: r.Damping}
	if len(points) < 2 {
		return stats
	}

	keep := r.MinKeep
	if keep <= 0 {
		keep = DefaultRelaxMinKeep
	}
	start := Analyze(points)
	floor := keep * start.MinDistance
	spread := start.StdNN

	if cap(r.trial) < len(points) {
		r.trial = make([]mgl64.Vec3, len(points))
	}
	trial := r.trial[:len(points)]

	damping := r.Damping
	for it := 0; it < r.Iterations && damping > r.Damping*minDampingShare; it++ {
		copy(trial, points)
		r.step(trial, radii, damping)

		rep := Analyze(trial)
		if rep.StdNN <= spread && rep.MinDistance >= floor {
			copy(points, trial)
			spread = rep.StdNN
			stats.Accepted++
			continue
		}
		damping *= 0.5
		stats.Rejected++
	}
	stats.FinalDamping = damping
	return stats
}

// Step runs a single unguarded relaxation pass at the configured damping.
func (r *Relaxer) Step(points []mgl64.Vec3, radii []float64) {
	r.step(points, radii, r.Damping)
}

func (r *Relaxer) step(points []mgl64.Vec3, radii []float64, damping float64) {
	if r.Mode == ModeInPlace {
		for i := range points {
			offset := repulsion(points, radii, i)
			points[i] = r.pin(points[i].Add(offset.Mul(damping)))
		}
		return
	}

	if cap(r.offsets) < len(points) {
		r.offsets = make([]mgl64.Vec3, len(points))
	}
	offsets := r.offsets[:len(points)]
	for i := range points {
		offsets[i] = repulsion(points, radii, i)
	}
	for i := range points {
		points[i] = r.pin(points[i].Add(offsets[i].Mul(damping)))
	}
}

// pin projects p back onto the sphere surface.
func (r *Relaxer) pin(p mgl64.Vec3) mgl64.Vec3 {
	l := p.Len()
	if l == 0 {
		return p
	}
	return p.Mul(r.SphereRadius / l)
}

// repulsion sums (p-n)/|p-n|^2 over every neighbour overlapping point i.
// Coincident points contribute nothing.
func repulsion(points []mgl64.Vec3, radii []float64, i int) mgl64.Vec3 {
	var offset mgl64.Vec3
	p := points[i]
	for j, n := range points {
		if j == i {
			continue
		}
		d := p.Sub(n)
		distSq := d.LenSqr()
		reach := radii[i] + radii[j]
		if distSq == 0 || distSq >= reach*reach {
			continue
		}
		offset = offset.Add(d.Mul(1 / distSq))
	}
	return offset
}
