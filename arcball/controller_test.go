package arcball

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/eyeball/config"
)

func init() {
	config.MustInit("")
}

func newTestController() *Controller {
	return NewController(config.Cfg(), 800, 600)
}

func TestNewControllerIdentity(t *testing.T) {
	c := newTestController()

	if c.Orientation() != mgl64.QuatIdent() {
		t.Errorf("expected identity orientation, got %v", c.Orientation())
	}
	if c.RotationAxis() != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("expected initial axis (1, 0, 0), got %v", c.RotationAxis())
	}
	if c.Dragging() {
		t.Error("new controller should not be dragging")
	}
}

func TestIdleStaysStill(t *testing.T) {
	c := newTestController()

	for i := 0; i < 100; i++ {
		c.Update(16)
	}
	if math.Abs(c.RotationVelocity()) > 1e-9 {
		t.Errorf("idle velocity = %g, want 0", c.RotationVelocity())
	}
	if !quatNear(c.Orientation(), mgl64.QuatIdent(), 1e-9) {
		t.Errorf("idle orientation drifted to %v", c.Orientation())
	}
}

func TestPointerMoveIgnoredWhenReleased(t *testing.T) {
	c := newTestController()

	c.PointerMove(500, 300)
	for i := 0; i < 10; i++ {
		c.Update(16)
	}
	if c.RotationVelocity() != 0 {
		t.Errorf("hover without press rotated the ball: %g", c.RotationVelocity())
	}
}

func TestOrientationStaysNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := newTestController()

	x, y := 400.0, 300.0
	for i := 0; i < 5000; i++ {
		switch rng.Intn(10) {
		case 0:
			c.PointerDown(x, y)
		case 1:
			c.PointerUp()
		case 2:
			c.PointerLeave()
		case 3:
			c.SetSnapTarget(c.Orientation().Rotate(mgl64.Vec3{1, 0, 0}))
		case 4:
			c.ClearSnapTarget()
		default:
			x += rng.Float64()*200 - 100
			y += rng.Float64()*200 - 100
			c.PointerMove(x, y)
		}

		c.Update(rng.Float64() * 16)

		if n := c.Orientation().Len(); math.Abs(n-1) > 1e-6 {
			t.Fatalf("step %d: |q| = %.9f", i, n)
		}
		if v := c.RotationVelocity(); math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("step %d: velocity is %v", i, v)
		}
	}
}

func TestDragThenReleaseDecays(t *testing.T) {
	c := newTestController()

	c.PointerDown(400, 300)
	peak := 0.0
	for frame := 1; frame <= 10; frame++ {
		c.PointerMove(400+50*float64(frame), 300)
		c.Update(16)
		peak = math.Max(peak, c.RotationVelocity())
	}

	c.PointerUp()
	for frame := 0; frame < 60; frame++ {
		c.Update(16)
		peak = math.Max(peak, c.RotationVelocity())
	}

	if peak <= 0 {
		t.Fatal("drag produced no rotation")
	}
	if v := c.RotationVelocity(); v > 0.05*peak {
		t.Errorf("velocity after release = %g, want within 5%% of 0 (peak %g)", v, peak)
	}

	// A horizontal drag turns the ball about the vertical axis
	if axis := c.RotationAxis(); math.Abs(axis[1]) < 0.99 {
		t.Errorf("expected axis along y, got %v", axis)
	}
	if n := c.Orientation().Len(); math.Abs(n-1) > 1e-6 {
		t.Errorf("|q| = %f after drag", n)
	}
}

func TestConstantDragConverges(t *testing.T) {
	c := newTestController()

	c.PointerDown(100, 300)
	var at150 float64
	for frame := 1; frame <= 200; frame++ {
		c.PointerMove(100+2*float64(frame), 300)
		c.Update(16)
		if frame == 150 {
			at150 = c.RotationVelocity()
		}
	}
	at200 := c.RotationVelocity()

	if at200 < 1e-3 {
		t.Fatalf("steady drag velocity %g is indistinguishable from idle", at200)
	}
	if rel := math.Abs(at200-at150) / at200; rel > 0.15 {
		t.Errorf("velocity still moving: %g at 150, %g at 200", at150, at200)
	}
}

func TestSnapPullsTargetToDirection(t *testing.T) {
	c := newTestController()
	local := mgl64.Vec3{1, 0, 0}

	for i := 0; i < 400; i++ {
		c.SetSnapTarget(c.Orientation().Rotate(local))
		c.Update(16)
	}

	world := c.Orientation().Rotate(local)
	if d := world.Dot(c.SnapDirection()); d < 0.999 {
		t.Errorf("target %v did not reach snap direction (dot %f)", world, d)
	}
}

func TestSnapSuspendedWhileDragging(t *testing.T) {
	c := newTestController()
	c.SetSnapTarget(mgl64.Vec3{1, 0, 0})
	c.PointerDown(400, 300)

	for i := 0; i < 30; i++ {
		c.Update(16)
	}
	if !quatNear(c.Orientation(), mgl64.QuatIdent(), 1e-9) {
		t.Errorf("held pointer without movement still snapped: %v", c.Orientation())
	}
}

func TestSetSnapDirectionNormalizes(t *testing.T) {
	c := newTestController()

	c.SetSnapDirection(mgl64.Vec3{0, 3, 4})
	if got := c.SnapDirection(); !vecNear(got, mgl64.Vec3{0, 0.6, 0.8}, 1e-12) {
		t.Errorf("expected (0, 0.6, 0.8), got %v", got)
	}

	c.SetSnapDirection(mgl64.Vec3{})
	if got := c.SnapDirection(); !vecNear(got, mgl64.Vec3{0, 0.6, 0.8}, 1e-12) {
		t.Errorf("zero direction should be ignored, got %v", got)
	}
}

func TestFromVectorsParallel(t *testing.T) {
	q := fromVectors(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 1}, 10)
	if q != mgl64.QuatIdent() {
		t.Errorf("expected identity for parallel vectors, got %v", q)
	}

	q = fromVectors(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, 1)
	got := q.Rotate(mgl64.Vec3{1, 0, 0})
	if !vecNear(got, mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("expected x to rotate onto y, got %v", got)
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
