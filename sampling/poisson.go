package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidRadius is returned for a non-positive sphere radius.
	ErrInvalidRadius = errors.New("sphere radius must be positive")
	// ErrInvalidSeparation is returned for a non-positive minimum separation.
	ErrInvalidSeparation = errors.New("minimum separation must be positive")
)

// Default limits for the dart-throwing loop.
const (
	DefaultK             = 60
	DefaultMaxCandidates = 500_000
)

// SampleStats describes one Generate run.
type SampleStats struct {
	Candidates    int  // Candidates generated
	Accepted      int  // Samples accepted, including the seed
	OutOfBox      int  // Candidates rejected by the bounding box
	TooClose      int  // Candidates rejected by the separation test
	Truncated     bool // MaxCandidates stopped the run early
	ActiveResidue int  // Active points left when truncated
}

// PoissonSphere produces Poisson-disk samples on a sphere surface using
// Bridson's dart throwing, reprojecting every candidate onto the sphere.
type PoissonSphere struct {
	SphereRadius  float64
	MinSeparation float64
	K             int // Attempts per active point before it retires
	MaxCandidates int // Hard cap on candidates across the whole run

	center mgl64.Vec3 // Working center; keeps grid coordinates positive
	size   float64    // Edge length of the sampling box
}

// NewPoissonSphere creates a sampler for the given sphere and separation.
func NewPoissonSphere(sphereRadius, minSeparation float64) (*PoissonSphere, error) {
	if !(sphereRadius > 0) || math.IsInf(sphereRadius, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, sphereRadius)
	}
	if !(minSeparation > 0) || math.IsInf(minSeparation, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeparation, minSeparation)
	}

	return &PoissonSphere{
		SphereRadius:  sphereRadius,
		MinSeparation: minSeparation,
		K:             DefaultK,
		MaxCandidates: DefaultMaxCandidates,
		center:        mgl64.Vec3{sphereRadius, sphereRadius, sphereRadius},
		size:          2 * sphereRadius,
	}, nil
}

// Generate returns the accepted samples in the sphere's local frame
// (centered on the origin) together with run statistics.
func (s *PoissonSphere) Generate(rng *rand.Rand) ([]mgl64.Vec3, SampleStats) {
	var stats SampleStats

	k := s.K
	if k <= 0 {
		k = DefaultK
	}
	maxCandidates := s.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	grid := NewSeparationGrid(s.size, s.MinSeparation)

	seed := RandomDirection(rng).Mul(s.SphereRadius).Add(s.center)
	active := []int{grid.Insert(seed)}
	stats.Accepted = 1

	r := s.MinSeparation
	for len(active) > 0 {
		if stats.Candidates >= maxCandidates {
			stats.Truncated = true
			stats.ActiveResidue = len(active)
			break
		}

		slot := rng.Intn(len(active))
		p := grid.Points()[active[slot]]

		found := false
		for i := 0; i < k; i++ {
			stats.Candidates++

			offset := RandomDirection(rng).Mul(r + rng.Float64()*r)
			candidate := s.project(p.Add(offset))

			if !s.inBox(candidate) {
				stats.OutOfBox++
				continue
			}
			if !grid.Free(candidate) {
				stats.TooClose++
				continue
			}

			active = append(active, grid.Insert(candidate))
			stats.Accepted++
			found = true
		}

		if !found {
			// Retire the point; it stays in the output
			last := len(active) - 1
			active[slot] = active[last]
			active = active[:last]
		}
	}

	points := make([]mgl64.Vec3, grid.Len())
	for i, p := range grid.Points() {
		points[i] = p.Sub(s.center)
	}
	return points, stats
}

// project moves p radially onto the sphere around the working center.
func (s *PoissonSphere) project(p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(s.center)
	l := d.Len()
	if l == 0 {
		return p
	}
	return s.center.Add(d.Mul(s.SphereRadius / l))
}

// inBox reports whether p lies within the sampling box.
func (s *PoissonSphere) inBox(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < 0 || p[i] > s.size {
			return false
		}
	}
	return true
}

// RandomDirection returns a uniformly distributed unit vector.
func RandomDirection(rng *rand.Rand) mgl64.Vec3 {
	u := (rng.Float64() - 0.5) * 2
	t := rng.Float64() * 2 * math.Pi
	f := math.Sqrt(1 - u*u)
	return mgl64.Vec3{f * math.Cos(t), f * math.Sin(t), u}
}
