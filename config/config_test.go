package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Sampling.K != 60 {
		t.Errorf("expected k=60, got %d", cfg.Sampling.K)
	}
	if cfg.Relax.Damping != 0.015 {
		t.Errorf("expected damping 0.015, got %f", cfg.Relax.Damping)
	}
	if cfg.Eyes.CloseDelayMs != 2000 {
		t.Errorf("expected close delay 2000, got %f", cfg.Eyes.CloseDelayMs)
	}
	if cfg.Derived.ScreenW32 != 1280 {
		t.Errorf("expected derived width 1280, got %f", cfg.Derived.ScreenW32)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("sampling:\n  radius: 0.3\narcball:\n  snap_direction: [0, 3, 4]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sampling.Radius != 0.3 {
		t.Errorf("expected overlaid radius 0.3, got %f", cfg.Sampling.Radius)
	}
	// Untouched fields keep their defaults
	if cfg.Sampling.K != 60 {
		t.Errorf("expected default k=60 to survive overlay, got %d", cfg.Sampling.K)
	}

	d := cfg.Derived.SnapDirection
	if math.Abs(d[1]-0.6) > 1e-9 || math.Abs(d[2]-0.8) > 1e-9 {
		t.Errorf("expected normalized snap direction (0, 0.6, 0.8), got %v", d)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero sphere radius", func(c *Config) { c.Sphere.Radius = 0 }},
		{"negative sampling radius", func(c *Config) { c.Sampling.Radius = -1 }},
		{"zero k", func(c *Config) { c.Sampling.K = 0 }},
		{"unknown relax mode", func(c *Config) { c.Relax.Mode = "jacobi" }},
		{"unknown eye mode", func(c *Config) { c.Eyes.Mode = "wink" }},
		{"unknown size mode", func(c *Config) { c.Sampling.SizeMode = "gauss" }},
		{"zero frame", func(c *Config) { c.Arcball.TargetFrameMs = 0 }},
		{"completion at one", func(c *Config) { c.Eyes.Completion = 1 }},
		{"completion above one", func(c *Config) { c.Eyes.Completion = 1.2 }},
		{"zero min keep", func(c *Config) { c.Relax.MinKeep = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Defaults()
	cfg.Eyes.TriggerRadius = 0.35

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Eyes.TriggerRadius != 0.35 {
		t.Errorf("expected trigger radius 0.35, got %f", loaded.Eyes.TriggerRadius)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected Cfg() to panic before Init")
		}
	}()
	Cfg()
}
