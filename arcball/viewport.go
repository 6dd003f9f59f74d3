// Package arcball turns pointer drags into a smoothed sphere orientation.
package arcball

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Viewport maps canvas pixels onto a virtual trackball.
type Viewport struct {
	// Canvas dimensions in pixels
	Width, Height float64
}

// NewViewport creates a viewport for a canvas of the given size.
func NewViewport(width, height float64) *Viewport {
	v := &Viewport{}
	v.Resize(width, height)
	return v
}

// Resize updates the canvas dimensions. Degenerate sizes are clamped to one pixel.
func (v *Viewport) Resize(width, height float64) {
	v.Width = math.Max(width, 1)
	v.Height = math.Max(height, 1)
}

// Canonical maps a pixel position to roughly [-1, 1] on the longer axis,
// keeping the aspect ratio. Y grows downwards as on screen.
func (v *Viewport) Canonical(p mgl64.Vec2) (x, y float64) {
	s := math.Max(v.Width, v.Height) - 1
	if s <= 0 {
		s = 1
	}
	x = (2*p[0] - v.Width - 1) / s
	y = (2*p[1] - v.Height - 1) / s
	return x, y
}

// Project lifts a pixel position onto a ball of radius r. Inside r/sqrt(2)
// the point lands on the sphere; outside it follows the hyperbola
// z = (r^2/2)/|xy|, which meets the sphere without a seam.
func (v *Viewport) Project(p mgl64.Vec2, r float64) mgl64.Vec3 {
	x, y := v.Canonical(p)
	xySq := x*x + y*y
	rSq := r * r

	var z float64
	if xySq <= rSq/2 {
		z = math.Sqrt(rSq - xySq)
	} else {
		z = (rSq / 2) / math.Sqrt(xySq)
	}
	return mgl64.Vec3{-x, y, z}
}
