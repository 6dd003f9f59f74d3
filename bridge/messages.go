package bridge

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/eyeball/sampling"
	"github.com/pthm-cable/eyeball/scene"
)

// Inbound message types.
const (
	MsgPointerDown  = "pointer_down"
	MsgPointerMove  = "pointer_move"
	MsgPointerUp    = "pointer_up"
	MsgPointerLeave = "pointer_leave"
	MsgContact      = "contact"
	MsgResize       = "resize"
	MsgSnap         = "snap"
)

// Message is a client event. Which fields are used depends on Type.
type Message struct {
	Type string `json:"type"`

	// Pointer position in canvas pixels
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Contact point in world space; null means the pointer left the sphere
	Point *[3]float64 `json:"point,omitempty"`

	// Canvas size
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Particle to snap; missing or negative disables
	Index *int `json:"index,omitempty"`
}

// ParticleJSON is one particle in the setup message.
type ParticleJSON struct {
	Position   [3]float64 `json:"position"`
	Normal     [3]float64 `json:"normal"`
	Radius     float64    `json:"radius"`
	SizeFactor float64    `json:"sizeFactor"`
}

// SetupMessage is sent once to every new client.
type SetupMessage struct {
	Type      string         `json:"type"`
	Particles []ParticleJSON `json:"particles"`
}

// FrameMessage is broadcast after every tick. Orientation is (x, y, z, w);
// Texture packs (x, y, z, scale) per particle in the sphere's local frame.
type FrameMessage struct {
	Type             string     `json:"type"`
	Tick             int32      `json:"tick"`
	Orientation      [4]float64 `json:"orientation"`
	RotationAxis     [3]float64 `json:"rotationAxis"`
	RotationVelocity float64    `json:"rotationVelocity"`
	Texture          []float32  `json:"texture"`
}

func newSetupMessage(particles []sampling.Particle) SetupMessage {
	msg := SetupMessage{Type: "setup", Particles: make([]ParticleJSON, len(particles))}
	for i, p := range particles {
		msg.Particles[i] = ParticleJSON{
			Position:   p.Position,
			Normal:     p.Normal,
			Radius:     p.Radius,
			SizeFactor: p.SizeFactor,
		}
	}
	return msg
}

func newFrameMessage(sc *scene.Scene) FrameMessage {
	q := sc.Orientation()
	ab := sc.Arcball()
	return FrameMessage{
		Type:             "frame",
		Tick:             sc.TickCount(),
		Orientation:      [4]float64{q.V[0], q.V[1], q.V[2], q.W},
		RotationAxis:     ab.RotationAxis(),
		RotationVelocity: ab.RotationVelocity(),
		Texture:          sc.DataTexture(),
	}
}

func vec3(p [3]float64) mgl64.Vec3 { return mgl64.Vec3(p) }
