package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eyeball/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title            string
	Eyes             int
	Opening          int
	Closing          int
	MaxScale         float64
	Tick             int32
	FPS              int32
	RotationVelocity float64
	Dragging         bool
	Snap             int // Snapped particle, -1 for none
	Paused           bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Eyes: %d | Opening: %d | Closing: %d | Max scale: %.2f",
			data.Eyes, data.Opening, data.Closing, data.MaxScale),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Rotation: %.4f rad/frame", data.Tick, data.FPS, data.RotationVelocity),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	switch {
	case data.Paused:
		status = "PAUSED"
	case data.Dragging:
		status = "Dragging"
	case data.Snap >= 0:
		status = fmt.Sprintf("Snapping to eye %d", data.Snap)
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase tick timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	p.renderer.DrawPanel(x-6, y-6, 256, 40+int32(len(stats.PhaseAvg))*14)

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f TPS)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 16

	for ph, avg := range stats.PhaseAvg {
		pct := stats.PhasePct[ph]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", telemetry.Phase(ph), avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
