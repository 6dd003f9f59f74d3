// Package viewer draws a Scene in a raylib window and feeds it mouse input.
package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eyeball/camera"
	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/scene"
	"github.com/pthm-cable/eyeball/ui"
)

// Camera placement
const (
	CameraDistance = 4.0
	CameraFovy     = 45.0
)

// Viewer owns the window loop for one Scene. The window must already be
// open when Run is called.
type Viewer struct {
	cfg   *config.Config
	scene *scene.Scene

	camera *camera.Camera
	hud    *ui.HUD
	perf   *ui.PerfPanel
	eye    *ui.EyePanel

	// State
	paused    bool
	showHUD   bool
	showPerf  bool
	snapIndex int
	selected  int
	hovering  bool

	// Window dimensions
	width, height float32
}

// New creates a viewer for sc.
func New(cfg *config.Config, sc *scene.Scene) *Viewer {
	v := &Viewer{
		cfg:       cfg,
		scene:     sc,
		showHUD:   true,
		snapIndex: -1,
		selected:  -1,
		width:     cfg.Derived.ScreenW32,
		height:    cfg.Derived.ScreenH32,
		camera: camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height),
			CameraDistance, CameraFovy, cfg.Sphere.Radius),
		hud:  ui.NewHUD(),
		perf: ui.NewPerfPanel(int32(cfg.Derived.ScreenW32)-260, 10),
		eye:  ui.NewEyePanel(),
	}
	return v
}

// Run processes input, ticks the scene and draws until the window closes
// or maxTicks (when positive) is reached.
func (v *Viewer) Run(maxTicks int) {
	slog.Info("viewer started", "particles", len(v.scene.Particles()))

	for !rl.WindowShouldClose() {
		contact := v.handleInput()

		if !v.paused {
			v.scene.Tick(float64(rl.GetFrameTime())*1000, contact)
		}
		v.Draw()

		if maxTicks > 0 && int(v.scene.TickCount()) >= maxTicks {
			slog.Info("max ticks reached", "tick", v.scene.TickCount())
			return
		}
	}
}

// camera3D converts the dolly camera for raylib.
func (v *Viewer) camera3D() rl.Camera3D {
	eye := v.camera.Eye()
	return rl.Camera3D{
		Position:   toVector3(eye),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(v.camera.Fovy),
		Projection: rl.CameraPerspective,
	}
}
