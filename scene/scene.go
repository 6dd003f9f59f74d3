// Package scene owns a complete eye-covered sphere and steps it once per frame.
package scene

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/eyeball/arcball"
	"github.com/pthm-cable/eyeball/components"
	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/sampling"
	"github.com/pthm-cable/eyeball/systems"
	"github.com/pthm-cable/eyeball/telemetry"
)

// Options configures a Scene.
type Options struct {
	Seed int64

	// Canvas size in pixels for arcball projection; 0 uses the screen config
	Width, Height float64

	LogStats      bool
	OutputDir     string
	StatsCallback func(telemetry.WindowStats)
}

// Scene holds the particles, the orientation controller and the eye system.
// It is single-writer: Tick and the pointer methods on Arcball must be
// called from one goroutine.
type Scene struct {
	cfg *config.Config
	rng *rand.Rand

	world     *ecs.World
	particles []sampling.Particle
	setup     sampling.Result
	entities  []ecs.Entity

	controller *arcball.Controller
	eyes       *systems.EyeSystem
	contact    systems.ContactTracker
	snapIndex  int
	width      float64
	height     float64

	instFilter  *ecs.Filter2[components.Surface, components.Instance]
	blinkFilter *ecs.Filter1[components.Blink]
	blinkMap    *ecs.Map1[components.Blink]

	// Read-only snapshots, refreshed every tick
	instances []components.Instance
	texture   []float32
	matrices  []mgl64.Mat4

	tick          int32
	timeMs        float64
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	openness      []float64
}

// New samples and relaxes the particle layout and spawns one entity per
// particle.
func New(cfg *config.Config, opts Options) (*Scene, error) {
	rng := rand.New(rand.NewSource(opts.Seed))

	sampleOpts, err := sampling.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("sampling options: %w", err)
	}
	particles, res, err := sampling.SampleAndRelax(sampleOpts, rng)
	if err != nil {
		return nil, fmt.Errorf("sampling particles: %w", err)
	}
	if res.Sampling.Truncated {
		slog.Warn("sampling truncated by candidate cap",
			"candidates", res.Sampling.Candidates,
		"relax_passes", res.Relax.Accepted,
		"relax_rejected", res.Relax.Rejected,
			"active_residue", res.Sampling.ActiveResidue,
		)
	}

	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = float64(cfg.Screen.Width), float64(cfg.Screen.Height)
	}

	world := ecs.NewWorld()
	eyes, err := systems.NewEyeSystem(world, cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("eye system: %w", err)
	}

	s := &Scene{
		cfg:           cfg,
		rng:           rng,
		world:         world,
		particles:     particles,
		setup:         res,
		controller:    arcball.NewController(cfg, w, h),
		eyes:          eyes,
		snapIndex:     -1,
		width:         w,
		height:        h,
		instFilter:    ecs.NewFilter2[components.Surface, components.Instance](world),
		blinkFilter:   ecs.NewFilter1[components.Blink](world),
		blinkMap:      ecs.NewMap1[components.Blink](world),
		instances:     make([]components.Instance, len(particles)),
		texture:       make([]float32, 4*len(particles)),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	s.entities = eyes.Spawn(particles)
	s.refreshSnapshots()

	slog.Info("scene ready",
		"seed", opts.Seed,
		"particles", len(particles),
		"candidates", res.Sampling.Candidates,
		"before", res.Before,
		"after", res.After,
	)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		s.output = om
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		if err := om.WriteParticles(s.particleRecords()); err != nil {
			slog.Error("failed to write particles", "error", err)
		}
	}

	return s, nil
}

// Tick advances the scene by dtMs. contactWorld is the pointer hit on the
// sphere in world space, or nil. dtMs is clamped to the target frame.
func (s *Scene) Tick(dtMs float64, contactWorld *mgl64.Vec3) {
	dt := mgl64.Clamp(dtMs, 0, s.cfg.Arcball.TargetFrameMs)

	s.perf.StartTick()

	// The contact was picked against the orientation on screen, which is
	// the one from before this tick's update.
	s.perf.StartPhase(telemetry.PhaseContact)
	var local *mgl64.Vec3
	if contactWorld != nil {
		p := s.controller.Orientation().Conjugate().Rotate(*contactWorld)
		local = &p
	}
	velocity := s.contact.Observe(local)

	s.perf.StartPhase(telemetry.PhaseArcball)
	if s.snapIndex >= 0 {
		s.controller.SetSnapTarget(s.controller.Orientation().Rotate(s.particles[s.snapIndex].Position))
	}
	s.controller.Update(dt)

	s.perf.StartPhase(telemetry.PhaseEyes)
	s.eyes.Update(dt, local, velocity)

	s.perf.StartPhase(telemetry.PhaseSnapshot)
	s.refreshSnapshots()

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.tick++
	s.timeMs += dt
	s.collector.Record(telemetry.TickSample{
		Triggered:        s.eyes.Stats().Triggered,
		Contact:          local != nil,
		Dragging:         s.controller.Dragging(),
		RotationVelocity: s.controller.RotationVelocity(),
	})
	s.flushTelemetry()

	s.perf.EndTick()
}

// Arcball returns the orientation controller for pointer events.
func (s *Scene) Arcball() *arcball.Controller { return s.controller }

// Orientation returns the current unit orientation.
func (s *Scene) Orientation() mgl64.Quat { return s.controller.Orientation() }

// Particles returns the particle layout. The order is stable and indexes
// Instances, Matrices and DataTexture.
func (s *Scene) Particles() []sampling.Particle { return s.particles }

// Setup returns the sampling diagnostics.
func (s *Scene) Setup() sampling.Result { return s.setup }

// Eyes returns the eye system.
func (s *Scene) Eyes() *systems.EyeSystem { return s.eyes }

// TickCount returns the number of ticks run.
func (s *Scene) TickCount() int32 { return s.tick }

// TimeMs returns the accumulated clamped time.
func (s *Scene) TimeMs() float64 { return s.timeMs }

// Perf returns the performance collector.
func (s *Scene) Perf() *telemetry.PerfCollector { return s.perf }

// SnapToParticle keeps pulling particle i towards the snap direction while
// the pointer is released. A negative index disables snapping.
func (s *Scene) SnapToParticle(i int) {
	if i < 0 || i >= len(s.particles) {
		s.snapIndex = -1
		s.controller.ClearSnapTarget()
		return
	}
	s.snapIndex = i
}

// SnapIndex returns the particle being snapped, or -1.
func (s *Scene) SnapIndex() int { return s.snapIndex }

// Resize updates the canvas size used for pointer projection.
func (s *Scene) Resize(width, height float64) {
	s.width, s.height = width, height
	s.controller.Resize(width, height)
}

// Close flushes and closes output files.
func (s *Scene) Close() error {
	return s.output.Close()
}
