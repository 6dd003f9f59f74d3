// Package camera provides a dolly camera looking at the sphere's center.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clip planes
const (
	Near = 0.01
	Far  = 100.0
)

// Camera sits on the +Z axis looking at the origin with +Y up. It maps
// between screen pixels (origin top-left, y down) and world space.
type Camera struct {
	// Distance from the origin
	Distance float64

	// Vertical field of view in degrees
	Fovy float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Distance constraints
	MinDistance, MaxDistance float64

	home float64
}

// New creates a camera at distance from the origin. The minimum distance
// keeps the near plane outside a sphere of radius sphereRadius.
func New(viewportW, viewportH, distance, fovy, sphereRadius float64) *Camera {
	return &Camera{
		Distance:    distance,
		Fovy:        fovy,
		ViewportW:   math.Max(viewportW, 1),
		ViewportH:   math.Max(viewportH, 1),
		MinDistance: sphereRadius * 1.2,
		MaxDistance: sphereRadius * 20,
		home:        distance,
	}
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl64.Vec3 {
	return mgl64.Vec3{0, 0, c.Distance}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the current viewport.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.Fovy), c.ViewportW/c.ViewportH, Near, Far)
}

// WorldToScreen projects a world point to screen pixels.
func (c *Camera) WorldToScreen(p mgl64.Vec3) (sx, sy float64) {
	w, h := int(c.ViewportW), int(c.ViewportH)
	win := mgl64.Project(p, c.View(), c.Projection(), 0, 0, w, h)
	return win[0], c.ViewportH - win[1]
}

// Ray returns the origin and unit direction of the ray through a screen
// pixel.
func (c *Camera) Ray(sx, sy float64) (origin, dir mgl64.Vec3) {
	w, h := int(c.ViewportW), int(c.ViewportH)
	view, proj := c.View(), c.Projection()
	win := mgl64.Vec3{sx, c.ViewportH - sy, 1}

	far, err := mgl64.UnProject(win, view, proj, 0, 0, w, h)
	if err != nil {
		return c.Eye(), mgl64.Vec3{0, 0, -1}
	}
	return c.Eye(), far.Sub(c.Eye()).Normalize()
}

// Facing reports whether a surface point with outward normal n faces the
// camera. Back-facing eyes can be skipped when drawing.
func (c *Camera) Facing(p, n mgl64.Vec3) bool {
	return c.Eye().Sub(p).Dot(n) > 0
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = math.Max(viewportW, 1)
	c.ViewportH = math.Max(viewportH, 1)
}

// SetDistance sets the distance, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = mgl64.Clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by factor; factors above 1 move closer.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Reset returns the camera to its starting distance.
func (c *Camera) Reset() {
	c.Distance = c.home
}
