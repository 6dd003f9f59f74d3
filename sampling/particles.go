package sampling

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/eyeball/config"
)

// Particle is one eye on the sphere surface. Immutable after setup.
type Particle struct {
	Position   mgl64.Vec3 // On the sphere, local frame
	Normal     mgl64.Vec3 // Unit outward direction
	Radius     float64    // Sampling radius times SizeFactor
	SizeFactor float64
}

// Options collects everything SampleAndRelax needs.
type Options struct {
	SphereRadius  float64
	BaseRadius    float64 // Minimum separation and base particle radius
	K             int
	MaxCandidates int
	SizeMin       float64
	SizeMax       float64
	SizeMode      SizeMode
	Frequency     float64
	Relax         Relaxer
}

// DefaultOptions returns options for a sphere and base radius using the
// library defaults (uniform size factors in [0.8, 1.6], 30 snapshot passes).
func DefaultOptions(sphereRadius, baseRadius float64) Options {
	return Options{
		SphereRadius:  sphereRadius,
		BaseRadius:    baseRadius,
		K:             DefaultK,
		MaxCandidates: DefaultMaxCandidates,
		SizeMin:       0.8,
		SizeMax:       1.6,
		SizeMode:      SizeRandom,
		Relax:         *NewRelaxer(sphereRadius),
	}
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	sizeMode, err := ParseSizeMode(cfg.Sampling.SizeMode)
	if err != nil {
		return Options{}, err
	}
	relaxMode, err := ParseRelaxMode(cfg.Relax.Mode)
	if err != nil {
		return Options{}, err
	}

	return Options{
		SphereRadius:  cfg.Sphere.Radius,
		BaseRadius:    cfg.Sampling.Radius,
		K:             cfg.Sampling.K,
		MaxCandidates: cfg.Sampling.MaxCandidates,
		SizeMin:       cfg.Sampling.SizeMin,
		SizeMax:       cfg.Sampling.SizeMax,
		SizeMode:      sizeMode,
		Frequency:     cfg.Sampling.NoiseFrequency,
		Relax: Relaxer{
			Iterations:   cfg.Relax.Iterations,
			Damping:      cfg.Relax.Damping,
			Mode:         relaxMode,
			SphereRadius: cfg.Sphere.Radius,
			MinKeep:      cfg.Relax.MinKeep,
		},
	}, nil
}

// Result carries diagnostics from a setup run.
type Result struct {
	Sampling SampleStats
	Relax    RelaxStats
	Before   Report // Layout straight out of the sampler
	After    Report // Layout after relaxation
}

// SampleAndRelax samples the sphere, assigns size factors and relaxes the
// layout. The returned order is stable and indexes renderer-side instances.
func SampleAndRelax(opts Options, rng *rand.Rand) ([]Particle, Result, error) {
	var res Result

	sampler, err := NewPoissonSphere(opts.SphereRadius, opts.BaseRadius)
	if err != nil {
		return nil, res, fmt.Errorf("creating sampler: %w", err)
	}
	sampler.K = opts.K
	sampler.MaxCandidates = opts.MaxCandidates

	points, stats := sampler.Generate(rng)
	res.Sampling = stats
	res.Before = Analyze(points)

	sizes := NewSizeField(opts.SizeMin, opts.SizeMax, opts.SizeMode, opts.Frequency, rng)
	factors := make([]float64, len(points))
	radii := make([]float64, len(points))
	for i, p := range points {
		factors[i] = sizes.Factor(p, rng)
		radii[i] = opts.BaseRadius * factors[i]
	}

	relaxer := opts.Relax
	relaxer.SphereRadius = opts.SphereRadius
	res.Relax = relaxer.Relax(points, radii)
	res.After = Analyze(points)

	particles := make([]Particle, len(points))
	for i, p := range points {
		particles[i] = Particle{
			Position:   p,
			Normal:     p.Normalize(),
			Radius:     radii[i],
			SizeFactor: factors[i],
		}
	}
	return particles, res, nil
}

// SampleAndRelaxParticles is the setup entry point used by renderers that
// only know the sphere radius and the particle base radius.
func SampleAndRelaxParticles(sphereRadius, baseRadius float64, rng *rand.Rand) ([]Particle, error) {
	particles, _, err := SampleAndRelax(DefaultOptions(sphereRadius, baseRadius), rng)
	return particles, err
}
