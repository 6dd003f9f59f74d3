package components

import "github.com/go-gl/mathgl/mgl64"

// Surface is the immutable placement of an eye on the sphere, in the
// sphere's local frame.
type Surface struct {
	Position   mgl64.Vec3
	Normal     mgl64.Vec3 // unit outward
	Radius     float64    // base radius times SizeFactor
	SizeFactor float64
	Index      int32 // stable slot in the renderer instance buffer
}

// Instance is the derived render transform, written every tick.
type Instance struct {
	Position mgl64.Vec3 // local frame
	Scale    float64
}
