package arcball

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/eyeball/config"
)

// Controller accumulates pointer drags into an orientation quaternion with
// momentum, and optionally pulls a target direction towards a snap direction
// while the pointer is released.
type Controller struct {
	cfg      config.ArcballConfig
	viewport *Viewport

	dragging    bool
	pointer     mgl64.Vec2
	prevPointer mgl64.Vec2

	orientation mgl64.Quat
	pointerRot  mgl64.Quat
	combined    mgl64.Quat // running average of the per-frame rotation

	axis             mgl64.Vec3
	velocity         float64
	smoothedVelocity float64

	snapDirection mgl64.Vec3
	snapTarget    mgl64.Vec3
	hasSnapTarget bool
}

// NewController creates a controller for a canvas of the given size.
func NewController(cfg *config.Config, width, height float64) *Controller {
	d := cfg.Derived.SnapDirection
	return &Controller{
		cfg:           cfg.Arcball,
		viewport:      NewViewport(width, height),
		orientation:   mgl64.QuatIdent(),
		pointerRot:    mgl64.QuatIdent(),
		combined:      mgl64.QuatIdent(),
		axis:          mgl64.Vec3{1, 0, 0},
		snapDirection: mgl64.Vec3{d[0], d[1], d[2]},
	}
}

// PointerDown starts a drag at pixel (x, y).
func (c *Controller) PointerDown(x, y float64) {
	c.pointer = mgl64.Vec2{x, y}
	c.prevPointer = c.pointer
	c.dragging = true
}

// PointerMove records the latest pointer position. Ignored unless dragging.
func (c *Controller) PointerMove(x, y float64) {
	if c.dragging {
		c.pointer = mgl64.Vec2{x, y}
	}
}

// PointerUp ends the drag; the rotation keeps its momentum and decays.
func (c *Controller) PointerUp() {
	c.dragging = false
}

// PointerLeave behaves like PointerUp.
func (c *Controller) PointerLeave() {
	c.dragging = false
}

// Resize updates the canvas dimensions used for projection.
func (c *Controller) Resize(width, height float64) {
	c.viewport.Resize(width, height)
}

// SetSnapTarget sets the world-space direction to pull towards the snap
// direction. The caller refreshes it every frame as the object turns.
func (c *Controller) SetSnapTarget(dir mgl64.Vec3) {
	if dir.LenSqr() == 0 {
		c.hasSnapTarget = false
		return
	}
	c.snapTarget = dir.Normalize()
	c.hasSnapTarget = true
}

// ClearSnapTarget disables snapping.
func (c *Controller) ClearSnapTarget() {
	c.hasSnapTarget = false
}

// SetSnapDirection changes the world-space direction targets snap to.
func (c *Controller) SetSnapDirection(dir mgl64.Vec3) {
	if dir.LenSqr() == 0 {
		return
	}
	c.snapDirection = dir.Normalize()
}

// Orientation returns the current unit orientation.
func (c *Controller) Orientation() mgl64.Quat { return c.orientation }

// RotationAxis returns the smoothed rotation axis.
func (c *Controller) RotationAxis() mgl64.Vec3 { return c.axis }

// RotationVelocity returns the smoothed rotation speed in turns per target frame.
func (c *Controller) RotationVelocity() float64 { return c.velocity }

// Dragging reports whether the pointer is held.
func (c *Controller) Dragging() bool { return c.dragging }

// SnapDirection returns the current snap direction.
func (c *Controller) SnapDirection() mgl64.Vec3 { return c.snapDirection }

// Update advances the controller by dtMs milliseconds. dtMs is expected to
// be clamped to the target frame duration by the caller.
func (c *Controller) Update(dtMs float64) {
	cfg := &c.cfg
	timeScale := dtMs/cfg.TargetFrameMs + 1e-5

	angleFactor := timeScale
	snapRot := mgl64.QuatIdent()
	intensity := cfg.PointerIntensity * timeScale

	if c.dragging {
		// Consume only part of the gap to the pointer each frame
		mid := c.pointer.Sub(c.prevPointer).Mul(intensity)

		if mid.LenSqr() > cfg.MoveEpsilon {
			mid = mid.Add(c.prevPointer)

			a := c.viewport.Project(mid, cfg.BallRadius).Normalize()
			b := c.viewport.Project(c.prevPointer, cfg.BallRadius).Normalize()
			c.prevPointer = mid

			angleFactor *= cfg.AngleAmplification / timeScale
			c.pointerRot = fromVectors(a, b, angleFactor)
		} else {
			c.pointerRot = mgl64.QuatSlerp(c.pointerRot, mgl64.QuatIdent(), intensity)
		}
	} else {
		c.pointerRot = mgl64.QuatSlerp(c.pointerRot, mgl64.QuatIdent(), intensity)

		if c.hasSnapTarget {
			a, b := c.snapTarget, c.snapDirection
			distSq := a.Sub(b).LenSqr()
			distanceFactor := math.Max(cfg.SnapMinFactor, 1-distSq*cfg.SnapDistanceGain)

			angleFactor *= cfg.SnapIntensity * distanceFactor
			snapRot = fromVectors(a, b, angleFactor)
		}
	}

	combined := snapRot.Mul(c.pointerRot)
	c.orientation = combined.Mul(c.orientation).Normalize()

	c.combined = mgl64.QuatSlerp(c.combined, combined, cfg.AxisIntensity*timeScale).Normalize()

	// Below the floor the axis is numerically meaningless; keep the last one
	rad := 2 * math.Acos(mgl64.Clamp(c.combined.W, -1, 1))
	s := math.Sin(rad / 2)
	rv := 0.0
	if s > cfg.AngleFloor {
		rv = rad / (2 * math.Pi)
		c.axis = c.combined.V.Mul(1 / s)
	}

	c.smoothedVelocity += (rv - c.smoothedVelocity) * cfg.VelocityIntensity * timeScale
	c.velocity = c.smoothedVelocity / timeScale
}

// fromVectors returns the rotation about a x b by angleFactor times the
// angle between unit vectors a and b. Parallel inputs give the identity.
func fromVectors(a, b mgl64.Vec3, angleFactor float64) mgl64.Quat {
	axis := a.Cross(b)
	l := axis.Len()
	if l < 1e-12 {
		return mgl64.QuatIdent()
	}
	d := mgl64.Clamp(a.Dot(b), -1, 1)
	angle := math.Acos(d) * angleFactor
	return mgl64.QuatRotate(angle, axis.Mul(1/l))
}
