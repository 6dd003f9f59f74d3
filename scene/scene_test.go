package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/eyeball/components"
	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/telemetry"
)

func init() {
	config.MustInit("")
}

func newTestScene(t *testing.T, seed int64, mutate func(*config.Config)) *Scene {
	t.Helper()
	cfg := *config.Cfg()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(&cfg, Options{Seed: seed, Width: 800, Height: 600})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func coarse(c *config.Config) { c.Sampling.Radius = 0.3 }

// ---------- Setup ----------

func TestNew_Layout(t *testing.T) {
	s := newTestScene(t, 1, nil)

	n := len(s.Particles())
	if n == 0 {
		t.Fatal("no particles")
	}
	if len(s.Instances()) != n || len(s.DataTexture()) != 4*n {
		t.Errorf("snapshot sizes %d/%d for %d particles", len(s.Instances()), len(s.DataTexture()), n)
	}
	for i, p := range s.Particles() {
		if math.Abs(p.Position.Len()-1) > 1e-9 {
			t.Errorf("particle %d off the sphere", i)
		}
		if s.Instances()[i].Scale != 0 {
			t.Errorf("particle %d starts open", i)
		}
	}
}

func TestNew_Deterministic(t *testing.T) {
	a := newTestScene(t, 3, coarse)
	b := newTestScene(t, 3, coarse)

	if len(a.Particles()) != len(b.Particles()) {
		t.Fatalf("same seed gave %d and %d particles", len(a.Particles()), len(b.Particles()))
	}
	for i := range a.Particles() {
		if a.Particles()[i] != b.Particles()[i] {
			t.Fatalf("particle %d differs between runs", i)
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := *config.Cfg()
	cfg.Eyes.Mode = "wobble"
	if _, err := New(&cfg, Options{Seed: 1}); err == nil {
		t.Error("expected error for unknown eye mode")
	}
}

// ---------- Ticking ----------

func TestTick_ClampsDelta(t *testing.T) {
	s := newTestScene(t, 1, coarse)

	s.Tick(1000, nil)
	if s.TimeMs() != 16 || s.Eyes().Now() != 16 {
		t.Errorf("expected 16ms step, got scene %f eyes %f", s.TimeMs(), s.Eyes().Now())
	}

	s.Tick(-5, nil)
	if s.TimeMs() != 16 {
		t.Errorf("negative delta advanced time to %f", s.TimeMs())
	}
	if s.TickCount() != 2 {
		t.Errorf("expected 2 ticks, got %d", s.TickCount())
	}
}

func TestTick_EndToEndBlink(t *testing.T) {
	s := newTestScene(t, 7, coarse)

	n := len(s.Particles())
	if n < 20 || n > 170 {
		t.Errorf("got %d particles for r=0.3, want within [20, 170]", n)
	}
	if min := s.Setup().Before.MinDistance; min < 0.3-1e-9 {
		t.Errorf("sampled min distance %f below 0.3", min)
	}

	p := s.Particles()[0].Position
	s.Tick(16, &p)
	q := p.Add(mgl64.Vec3{0.01, 0, 0})
	s.Tick(16, &q)

	if s.Eyes().Stats().Triggered == 0 {
		t.Fatal("moving contact on a particle triggered nothing")
	}

	maxScale := 0.0
	for s.TimeMs() < 4032 {
		s.Tick(16, nil)
		if s.TimeMs() <= 2000 {
			maxScale = math.Max(maxScale, s.Instances()[0].Scale)
		}
	}

	base := config.Cfg().Eyes.BaseScale
	if maxScale < 0.5*base {
		t.Errorf("particle 0 peaked at %f, want above %f", maxScale, 0.5*base)
	}
	if sc := s.Instances()[0].Scale; sc > 0.02*base {
		t.Errorf("particle 0 still at scale %f after 4s", sc)
	}
}

func TestTick_ContactUsesOrientation(t *testing.T) {
	s := newTestScene(t, 11, coarse)
	ab := s.Arcball()

	ab.PointerDown(400, 300)
	for i := 1; i <= 60; i++ {
		ab.PointerMove(400+12*float64(i), 300)
		s.Tick(16, nil)
	}
	ab.PointerUp()
	for i := 0; i < 60; i++ {
		s.Tick(16, nil)
	}

	q := s.Orientation()
	if angle := 2 * math.Acos(math.Min(1, math.Abs(q.W))); angle < 1 {
		t.Fatalf("drag rotated only %f rad", angle)
	}

	world := s.WorldPosition(0)
	s.Tick(16, &world)
	moved := s.WorldPosition(0).Add(mgl64.Vec3{0, 0.01, 0})
	s.Tick(16, &moved)

	for i := 0; i < 20; i++ {
		s.Tick(16, nil)
	}
	if sc := s.Instances()[0].Scale; sc <= 0 {
		t.Error("contact at the particle's world position did not open it")
	}
}

// ---------- Snapshots ----------

func TestSnapshots_Consistent(t *testing.T) {
	s := newTestScene(t, 5, coarse)

	p := s.Particles()[2].Position
	s.Tick(16, &p)
	q := p.Add(mgl64.Vec3{0, 0.01, 0})
	for i := 0; i < 20; i++ {
		s.Tick(16, &q)
	}

	tex := s.DataTexture()
	mats := s.Matrices()
	for i, inst := range s.Instances() {
		for k := 0; k < 3; k++ {
			if math.Abs(float64(tex[4*i+k])-inst.Position[k]) > 1e-6 {
				t.Fatalf("texel %d component %d = %f, want %f", i, k, tex[4*i+k], inst.Position[k])
			}
		}
		if math.Abs(float64(tex[4*i+3])-inst.Scale) > 1e-6 {
			t.Fatalf("texel %d scale = %f, want %f", i, tex[4*i+3], inst.Scale)
		}

		origin := mats[i].Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
		if !vecNear(origin, s.WorldPosition(i), 1e-9) {
			t.Fatalf("matrix %d places eye at %v, want %v", i, origin, s.WorldPosition(i))
		}
	}
}

func TestEye_FollowsContact(t *testing.T) {
	s := newTestScene(t, 6, coarse)

	if got := s.Eye(3).Phase; got != components.PhaseIdle {
		t.Fatalf("initial phase = %v, want idle", got)
	}

	p := s.Particles()[3].Position
	s.Tick(16, &p)
	q := p.Add(mgl64.Vec3{0.01, 0, 0})
	s.Tick(16, &q)

	if got := s.Eye(3).Phase; got != components.PhaseOpening {
		t.Errorf("phase after contact = %v, want opening", got)
	}
}

func TestPick(t *testing.T) {
	s := newTestScene(t, 4, coarse)

	// Rotate first so Pick has to undo the orientation
	ab := s.Arcball()
	ab.PointerDown(400, 300)
	for i := 0; i < 10; i++ {
		ab.PointerMove(400+float64(i)*20, 300)
		s.Tick(16, nil)
	}
	ab.PointerUp()

	for _, i := range []int{0, 5, len(s.Particles()) - 1} {
		if got := s.Pick(s.WorldPosition(i)); got != i {
			t.Errorf("Pick(world position of %d) = %d", i, got)
		}
	}
}

func TestSnapToParticle(t *testing.T) {
	s := newTestScene(t, 2, coarse)
	s.SnapToParticle(4)

	for i := 0; i < 400; i++ {
		s.Tick(16, nil)
	}

	dir := s.Orientation().Rotate(s.Particles()[4].Position).Normalize()
	if d := dir.Dot(s.Arcball().SnapDirection()); d < 0.999 {
		t.Errorf("particle 4 did not snap (dot %f)", d)
	}

	s.SnapToParticle(-1)
	before := s.Orientation()
	for i := 0; i < 10; i++ {
		s.Tick(16, nil)
	}
	if !quatNear(s.Orientation(), before, 1e-3) {
		t.Error("clearing the snap target did not stop snapping")
	}
}

// ---------- Script and telemetry ----------

func TestRunScript(t *testing.T) {
	var windows []telemetry.WindowStats
	cfg := *config.Cfg()
	s, err := New(&cfg, Options{
		Seed:          9,
		StatsCallback: func(w telemetry.WindowStats) { windows = append(windows, w) },
	})
	if err != nil {
		t.Fatal(err)
	}

	sc := DefaultScript()
	sc.Ticks = 600
	res := s.RunScript(sc, func(int) bool {
		if n := s.Orientation().Len(); math.Abs(n-1) > 1e-6 {
			t.Fatalf("|q| = %f", n)
		}
		return true
	})

	if res.Ticks != 600 || s.TickCount() != 600 {
		t.Errorf("ran %d ticks (scene %d), want 600", res.Ticks, s.TickCount())
	}
	if res.Triggers == 0 {
		t.Error("contact sweep triggered nothing")
	}
	if res.PeakRotation <= 0 {
		t.Error("scripted drag produced no rotation")
	}
	if want := 600 / cfg.Telemetry.StatsWindow; len(windows) != want {
		t.Errorf("got %d stats windows, want %d", len(windows), want)
	}
}

func TestRunScriptStops(t *testing.T) {
	s := newTestScene(t, 1, coarse)

	res := s.RunScript(DefaultScript(), func(tick int) bool { return tick < 9 })
	if res.Ticks != 10 {
		t.Errorf("expected 10 ticks, got %d", res.Ticks)
	}
}

func TestOutputDir(t *testing.T) {
	dir := t.TempDir()
	cfg := *config.Cfg()
	cfg.Sampling.Radius = 0.3
	s, err := New(&cfg, Options{Seed: 1, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < cfg.Telemetry.StatsWindow; i++ {
		s.Tick(16, nil)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"particles.csv", "frames.csv", "perf.csv", "config.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func vecNear(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// quatNear compares up to sign, since q and -q are the same rotation.
func quatNear(a, b mgl64.Quat, eps float64) bool {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return math.Abs(a.W-b.W) <= eps && vecNear(a.V, b.V, eps)
}
