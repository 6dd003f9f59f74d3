package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestContactTracker_Velocity(t *testing.T) {
	var c ContactTracker

	p := mgl64.Vec3{0, 0, 1}
	if v := c.Observe(&p); v != (mgl64.Vec3{}) {
		t.Errorf("first contact should have zero velocity, got %v", v)
	}

	q := mgl64.Vec3{0.1, 0, 1}
	if v := c.Observe(&q); !vecNear(v, mgl64.Vec3{0.1, 0, 0}, 1e-12) {
		t.Errorf("expected velocity (0.1, 0, 0), got %v", v)
	}
	if c.Frames() != 2 || !c.Active() {
		t.Errorf("expected 2 active frames, got %d (active %v)", c.Frames(), c.Active())
	}

	if v := c.Observe(nil); v != (mgl64.Vec3{}) || c.Active() {
		t.Errorf("losing contact should reset velocity, got %v", v)
	}

	// A new contact after a gap does not inherit the old position
	r := mgl64.Vec3{0, 1, 0}
	if v := c.Observe(&r); v != (mgl64.Vec3{}) {
		t.Errorf("expected zero velocity after gap, got %v", v)
	}
}

func TestIntersectSphere(t *testing.T) {
	tests := []struct {
		name   string
		origin mgl64.Vec3
		dir    mgl64.Vec3
		hit    bool
		want   mgl64.Vec3
	}{
		{"head on", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1}, true, mgl64.Vec3{0, 0, 1}},
		{"unnormalized dir", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -3}, true, mgl64.Vec3{0, 0, 1}},
		{"miss", mgl64.Vec3{0, 2, 5}, mgl64.Vec3{0, 0, -1}, false, mgl64.Vec3{}},
		{"pointing away", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 1}, false, mgl64.Vec3{}},
		{"from inside", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, true, mgl64.Vec3{1, 0, 0}},
		{"zero dir", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{}, false, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectSphere(tt.origin, tt.dir, mgl64.Vec3{}, 1)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && !vecNear(got, tt.want, 1e-9) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectSphereOffsetCenter(t *testing.T) {
	center := mgl64.Vec3{3, 0, 0}
	got, ok := IntersectSphere(mgl64.Vec3{3, 0, 10}, mgl64.Vec3{0, 0, -1}, center, 2)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(got.Sub(center).Len()-2) > 1e-9 || got[2] < 0 {
		t.Errorf("expected near-side hit on the sphere, got %v", got)
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
