package viewer

import (
	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eyeball/ui"
)

// Colors
var (
	backgroundColor = rl.Color{R: 12, G: 10, B: 18, A: 255}
	bodyColor       = rl.Color{R: 70, G: 24, B: 36, A: 255}
	scleraColor     = rl.Color{R: 240, G: 236, B: 228, A: 255}
	irisColor       = rl.Color{R: 40, G: 110, B: 140, A: 255}
	snapColor       = rl.Color{R: 255, G: 200, B: 60, A: 255}
	selectColor     = rl.Color{R: 120, G: 220, B: 255, A: 255}
)

// Draw renders the frame.
func (v *Viewer) Draw() {
	v.scene.Perf().RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	rl.BeginMode3D(v.camera3D())
	v.drawSphere()
	v.drawEyes()
	rl.EndMode3D()

	if v.showHUD {
		v.drawHUD()
	}

	rl.EndDrawing()
}

func (v *Viewer) drawSphere() {
	r := float32(v.cfg.Sphere.Radius)
	rl.DrawSphere(rl.NewVector3(0, 0, 0), r, bodyColor)
}

// drawEyes draws each open eye as a sclera with an iris pushed out along the
// rotated normal. Closed and back-facing eyes are skipped.
func (v *Viewer) drawEyes() {
	q := v.scene.Orientation()
	particles := v.scene.Particles()
	instances := v.scene.Instances()

	for i, p := range particles {
		scale := instances[i].Scale
		if scale <= 1e-3 {
			continue
		}
		r := p.Radius * scale
		pos := v.scene.WorldPosition(i)
		normal := q.Rotate(p.Normal)
		// Cull by the eye's base so eyes on the horizon still draw
		if !v.camera.Facing(pos.Sub(normal.Mul(r)), normal) {
			continue
		}

		rl.DrawSphere(toVector3(pos), float32(r), scleraColor)
		rl.DrawSphere(toVector3(pos.Add(normal.Mul(r*0.6))), float32(r*0.45), irisColor)
	}

	if v.snapIndex >= 0 && v.snapIndex < len(particles) {
		p := particles[v.snapIndex]
		rl.DrawSphereWires(toVector3(v.scene.WorldPosition(v.snapIndex)), float32(p.Radius), 6, 8, snapColor)
	}
	if v.selected >= 0 && v.selected < len(particles) {
		p := particles[v.selected]
		rl.DrawSphereWires(toVector3(v.scene.WorldPosition(v.selected)), float32(p.Radius*1.1), 6, 8, selectColor)
	}
}

// drawHUD draws the text overlay and panels.
func (v *Viewer) drawHUD() {
	stats := v.scene.Eyes().Stats()

	v.hud.Draw(ui.HUDData{
		Title:            "Eyeball",
		Eyes:             len(v.scene.Particles()),
		Opening:          stats.Opening,
		Closing:          stats.Closing,
		MaxScale:         stats.MaxScale,
		Tick:             v.scene.TickCount(),
		FPS:              rl.GetFPS(),
		RotationVelocity: v.scene.Arcball().RotationVelocity(),
		Dragging:         v.scene.Arcball().Dragging(),
		Snap:             v.snapIndex,
		Paused:           v.paused,
	})

	if v.showPerf {
		v.perf.Draw(v.scene.Perf().Stats())
	}

	if v.selected >= 0 {
		v.eye.Draw(v.eyeInfo(v.selected), int32(v.width), int32(v.height))
	}

	v.hud.DrawControls(int32(v.width), int32(v.height),
		"Drag: Rotate | Right click: Inspect | Wheel: Zoom | SPACE: Pause | N/C: Snap | P: Perf | H: HUD")
}

// eyeInfo collects the inspector data for eye i.
func (v *Viewer) eyeInfo(i int) ui.EyeInfo {
	p := v.scene.Particles()[i]
	b := v.scene.Eye(i)
	return ui.EyeInfo{
		Index:      i,
		Phase:      b.Phase.String(),
		Value:      b.Value,
		Force:      b.Force,
		Scale:      v.scene.Instances()[i].Scale,
		Radius:     p.Radius,
		SizeFactor: p.SizeFactor,
		Position:   p.Position,
		StartMs:    b.StartMs,
		NowMs:      v.scene.Eyes().Now(),
	}
}

func toVector3(p mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(p[0]), float32(p[1]), float32(p[2]))
}
