package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ContactTracker derives the contact velocity as the frame-to-frame delta of
// the contact point.
type ContactTracker struct {
	prev     mgl64.Vec3
	has      bool
	velocity mgl64.Vec3
	frames   int // consecutive frames with a contact
}

// Observe records this frame's contact point (nil when the pointer is off
// the sphere) and returns the contact velocity. The first frame of a new
// contact has zero velocity.
func (c *ContactTracker) Observe(p *mgl64.Vec3) mgl64.Vec3 {
	if p == nil {
		c.Reset()
		return c.velocity
	}

	if c.has {
		c.velocity = p.Sub(c.prev)
	} else {
		c.velocity = mgl64.Vec3{}
	}
	c.prev = *p
	c.has = true
	c.frames++
	return c.velocity
}

// Reset forgets the previous contact.
func (c *ContactTracker) Reset() {
	c.has = false
	c.velocity = mgl64.Vec3{}
	c.frames = 0
}

// Velocity returns the last computed contact velocity.
func (c *ContactTracker) Velocity() mgl64.Vec3 { return c.velocity }

// Active reports whether the last observation had a contact.
func (c *ContactTracker) Active() bool { return c.has }

// Frames returns the number of consecutive frames with a contact.
func (c *ContactTracker) Frames() int { return c.frames }

// IntersectSphere returns the nearest point where the ray origin + t*dir,
// t >= 0, meets the sphere. dir need not be normalized.
func IntersectSphere(origin, dir, center mgl64.Vec3, radius float64) (mgl64.Vec3, bool) {
	a := dir.LenSqr()
	if a == 0 {
		return mgl64.Vec3{}, false
	}

	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.LenSqr() - radius*radius
	disc := b*b - a*c
	if disc < 0 {
		return mgl64.Vec3{}, false
	}

	sq := math.Sqrt(disc)
	t := (-b - sq) / a
	if t < 0 {
		// Origin inside the sphere
		t = (-b + sq) / a
	}
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}
