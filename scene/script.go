package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Script is a deterministic input sequence for headless runs: a horizontal
// drag from the canvas center, then a contact sweeping around the equator.
type Script struct {
	Ticks int
	DtMs  float64

	DragFrames int     // Frames the pointer is held
	DragStep   float64 // Pixels moved per frame

	SweepStart int     // First tick with a contact
	SweepSpeed float64 // Radians per tick around the vertical axis
	SweepEvery int     // Sweep for SweepEvery ticks then rest as long; 0 sweeps continuously
}

// DefaultScript returns a one-minute script at 60 fps.
func DefaultScript() Script {
	return Script{
		Ticks:      3600,
		DtMs:       16,
		DragFrames: 20,
		DragStep:   25,
		SweepStart: 120,
		SweepSpeed: 0.03,
		SweepEvery: 240,
	}
}

// ScriptResult summarizes a script run.
type ScriptResult struct {
	Ticks        int
	Triggers     int
	PeakRotation float64
	PeakScale    float64
}

// RunScript drives the scene through sc. onTick, if set, runs after every
// tick and can stop the run by returning false.
func (s *Scene) RunScript(sc Script, onTick func(tick int) bool) ScriptResult {
	var res ScriptResult

	cx, cy := s.width/2, s.height/2
	radius := s.cfg.Sphere.Radius
	theta := 0.0

	for i := 0; i < sc.Ticks; i++ {
		switch {
		case i == 0 && sc.DragFrames > 0:
			s.controller.PointerDown(cx, cy)
		case i > 0 && i <= sc.DragFrames:
			s.controller.PointerMove(cx+sc.DragStep*float64(i), cy)
		case i == sc.DragFrames+1:
			s.controller.PointerUp()
		}

		var contact *mgl64.Vec3
		if i >= sc.SweepStart && sweeping(i-sc.SweepStart, sc.SweepEvery) {
			theta += sc.SweepSpeed
			p := mgl64.Vec3{math.Sin(theta), 0, math.Cos(theta)}.Mul(radius)
			contact = &p
		}

		s.Tick(sc.DtMs, contact)

		st := s.eyes.Stats()
		res.Ticks++
		res.Triggers += st.Triggered
		res.PeakRotation = math.Max(res.PeakRotation, s.controller.RotationVelocity())
		res.PeakScale = math.Max(res.PeakScale, st.MaxScale)

		if onTick != nil && !onTick(i) {
			break
		}
	}
	return res
}

func sweeping(i, every int) bool {
	if every <= 0 {
		return true
	}
	return (i/every)%2 == 0
}
