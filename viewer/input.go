package viewer

import (
	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eyeball/systems"
)

// handleInput processes keyboard and mouse input and returns the pointer's
// contact with the sphere in world space, or nil.
func (v *Viewer) handleInput() *mgl64.Vec3 {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.showHUD = !v.showHUD
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyX) {
		v.selected = -1
	}

	// Zoom: mouse wheel, +/- keys, Home resets
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}

	// Snap cycling: N picks the next particle, C clears
	if rl.IsKeyPressed(rl.KeyN) {
		v.snapIndex = (v.snapIndex + 1) % len(v.scene.Particles())
		v.scene.SnapToParticle(v.snapIndex)
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.snapIndex = -1
		v.scene.SnapToParticle(-1)
	}

	return v.handlePointer()
}

// handleResize propagates window size changes to the arcball.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.width && h == v.height {
		return
	}
	v.width, v.height = w, h
	v.scene.Resize(float64(w), float64(h))
	v.camera.Resize(float64(w), float64(h))
	v.perf.SetPosition(int32(w)-260, 10)
}

// handlePointer drives the arcball from the left mouse button and picks the
// contact point under the cursor.
func (v *Viewer) handlePointer() *mgl64.Vec3 {
	ab := v.scene.Arcball()
	mouse := rl.GetMousePosition()
	x, y := float64(mouse.X), float64(mouse.Y)

	if !rl.IsCursorOnScreen() {
		if ab.Dragging() {
			ab.PointerLeave()
		}
		v.hovering = false
		return nil
	}

	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		ab.PointerDown(x, y)
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		ab.PointerUp()
	default:
		ab.PointerMove(x, y)
	}

	origin, dir := v.camera.Ray(x, y)
	hit, ok := systems.IntersectSphere(origin, dir, mgl64.Vec3{}, v.cfg.Sphere.Radius)
	v.hovering = ok
	if !ok {
		return nil
	}

	// Right click inspects the eye under the cursor
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.selected = v.scene.Pick(hit)
	}
	return &hit
}
