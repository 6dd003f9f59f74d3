// Package config provides configuration loading and access for the ornament.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned by Validate for out-of-range values.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Sphere    SphereConfig    `yaml:"sphere"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Relax     RelaxConfig     `yaml:"relax"`
	Arcball   ArcballConfig   `yaml:"arcball"`
	Eyes      EyesConfig      `yaml:"eyes"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SphereConfig describes the ornament body.
type SphereConfig struct {
	Radius float64 `yaml:"radius"`
}

// SamplingConfig holds Poisson-disk sampling parameters.
type SamplingConfig struct {
	Radius         float64 `yaml:"radius"`          // Minimum separation between samples
	K              int     `yaml:"k"`               // Candidate attempts per active point
	MaxCandidates  int     `yaml:"max_candidates"`  // Hard cap on candidates per run
	SizeMin        float64 `yaml:"size_min"`        // Smallest per-particle size factor
	SizeMax        float64 `yaml:"size_max"`        // Largest per-particle size factor
	SizeMode       string  `yaml:"size_mode"`       // random | noise
	NoiseFrequency float64 `yaml:"noise_frequency"` // Frequency of the noise size field
}

// RelaxConfig holds surface relaxation parameters.
type RelaxConfig struct {
	Iterations int     `yaml:"iterations"`
	Damping    float64 `yaml:"damping"`
	Mode       string  `yaml:"mode"`     // snapshot | in_place
	MinKeep    float64 `yaml:"min_keep"` // Share of the sampled minimum distance a pass must keep
}

// ArcballConfig holds orientation controller tuning.
type ArcballConfig struct {
	TargetFrameMs      float64    `yaml:"target_frame_ms"`
	BallRadius         float64    `yaml:"ball_radius"`
	PointerIntensity   float64    `yaml:"pointer_intensity"`   // Share of pointer gap consumed per frame
	AngleAmplification float64    `yaml:"angle_amplification"` // Drag rotation gain
	MoveEpsilon        float64    `yaml:"move_epsilon"`        // Squared pixel movement threshold
	SnapIntensity      float64    `yaml:"snap_intensity"`
	SnapDistanceGain   float64    `yaml:"snap_distance_gain"`
	SnapMinFactor      float64    `yaml:"snap_min_factor"`
	AxisIntensity      float64    `yaml:"axis_intensity"`
	VelocityIntensity  float64    `yaml:"velocity_intensity"`
	AngleFloor         float64    `yaml:"angle_floor"` // sin(angle/2) floor for axis extraction
	SnapDirection      [3]float64 `yaml:"snap_direction"`
}

// EyesConfig holds eye particle animation parameters.
type EyesConfig struct {
	Mode            string  `yaml:"mode"` // scale | drift
	TriggerRadius   float64 `yaml:"trigger_radius"`
	MinContactSpeed float64 `yaml:"min_contact_speed"` // Contact movement per frame required to trigger
	CloseDelayMs    float64 `yaml:"close_delay_ms"`
	Completion      float64 `yaml:"completion"` // Progress at which the blink closes
	Overshoot       float64 `yaml:"overshoot"`  // Negative close target
	JitterMs        float64 `yaml:"jitter_ms"`
	DampingMs       float64 `yaml:"damping_ms"` // fs = dt / damping_ms
	BaseScale       float64 `yaml:"base_scale"`
	OpenTarget      float64 `yaml:"open_target"`
	OffsetFactor    float64 `yaml:"offset_factor"`
	DriftPush       float64 `yaml:"drift_push"`    // Tangential push away from the contact
	DriftImpulse    float64 `yaml:"drift_impulse"` // Contact velocity added to the force accumulator
}

// BridgeConfig holds websocket bridge settings.
type BridgeConfig struct {
	Addr           string `yaml:"addr"`
	FrameMs        int    `yaml:"frame_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32     float32    // Screen.Width as float32
	ScreenH32     float32    // Screen.Height as float32
	SnapDirection [3]float64 // Normalized Arcball.SnapDirection
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Sampling.SizeMin > c.Sampling.SizeMax {
		c.Sampling.SizeMin, c.Sampling.SizeMax = c.Sampling.SizeMax, c.Sampling.SizeMin
	}

	d := c.Arcball.SnapDirection
	l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if l == 0 {
		c.Derived.SnapDirection = [3]float64{0, 0, 1}
	} else {
		c.Derived.SnapDirection = [3]float64{d[0] / l, d[1] / l, d[2] / l}
	}
}

// Validate checks that the loaded values can drive a scene.
func (c *Config) Validate() error {
	switch {
	case c.Sphere.Radius <= 0:
		return fmt.Errorf("%w: sphere.radius must be positive", ErrInvalidConfig)
	case c.Sampling.Radius <= 0:
		return fmt.Errorf("%w: sampling.radius must be positive", ErrInvalidConfig)
	case c.Sampling.K <= 0:
		return fmt.Errorf("%w: sampling.k must be positive", ErrInvalidConfig)
	case c.Sampling.SizeMin <= 0:
		return fmt.Errorf("%w: sampling.size_min must be positive", ErrInvalidConfig)
	case c.Relax.Iterations < 0:
		return fmt.Errorf("%w: relax.iterations must not be negative", ErrInvalidConfig)
	case c.Relax.MinKeep <= 0 || c.Relax.MinKeep > 1:
		return fmt.Errorf("%w: relax.min_keep must be in (0, 1]", ErrInvalidConfig)
	case c.Arcball.TargetFrameMs <= 0:
		return fmt.Errorf("%w: arcball.target_frame_ms must be positive", ErrInvalidConfig)
	case c.Eyes.CloseDelayMs <= 0:
		return fmt.Errorf("%w: eyes.close_delay_ms must be positive", ErrInvalidConfig)
	case c.Eyes.DampingMs <= 0:
		return fmt.Errorf("%w: eyes.damping_ms must be positive", ErrInvalidConfig)
	case c.Eyes.Completion <= 0 || c.Eyes.Completion >= 1:
		return fmt.Errorf("%w: eyes.completion must be in (0, 1)", ErrInvalidConfig)
	}

	switch c.Sampling.SizeMode {
	case "random", "noise":
	default:
		return fmt.Errorf("%w: unknown sampling.size_mode %q", ErrInvalidConfig, c.Sampling.SizeMode)
	}
	switch c.Relax.Mode {
	case "snapshot", "in_place":
	default:
		return fmt.Errorf("%w: unknown relax.mode %q", ErrInvalidConfig, c.Relax.Mode)
	}
	switch c.Eyes.Mode {
	case "scale", "drift":
	default:
		return fmt.Errorf("%w: unknown eyes.mode %q", ErrInvalidConfig, c.Eyes.Mode)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
