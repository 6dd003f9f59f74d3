package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/eyeball/components"
	"github.com/pthm-cable/eyeball/sampling"
	"github.com/pthm-cable/eyeball/telemetry"
)

// refreshSnapshots copies the eye transforms into index order and packs the
// data texture.
func (s *Scene) refreshSnapshots() {
	query := s.instFilter.Query()
	for query.Next() {
		surf, inst := query.Get()
		i := int(surf.Index)
		s.instances[i] = *inst

		t := s.texture[4*i : 4*i+4]
		t[0] = float32(inst.Position[0])
		t[1] = float32(inst.Position[1])
		t[2] = float32(inst.Position[2])
		t[3] = float32(inst.Scale)
	}
	s.matrices = s.matrices[:0]
}

// Instances returns each eye's local position and scale, indexed like
// Particles. The slice is reused by the next Tick.
func (s *Scene) Instances() []components.Instance { return s.instances }

// DataTexture returns the packed (x, y, z, scale) per eye in the local
// frame, four floats per particle. The slice is reused by the next Tick.
func (s *Scene) DataTexture() []float32 { return s.texture }

// WorldPosition returns eye i's current position in world space.
func (s *Scene) WorldPosition(i int) mgl64.Vec3 {
	return s.controller.Orientation().Rotate(s.instances[i].Position)
}

// Eye returns the blink state of eye i.
func (s *Scene) Eye(i int) components.Blink {
	return *s.blinkMap.Get(s.entities[i])
}

// Pick returns the eye whose rest position is closest to a world-space
// point, or -1 when the scene is empty.
func (s *Scene) Pick(world mgl64.Vec3) int {
	local := s.controller.Orientation().Conjugate().Rotate(world)
	best, bestD := -1, 0.0
	for i, p := range s.particles {
		if d := p.Position.Sub(local).LenSqr(); best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// Matrices returns rotation * translation * scale for every eye, where the
// scale is the particle radius times the current openness.
func (s *Scene) Matrices() []mgl64.Mat4 {
	if len(s.matrices) == len(s.instances) {
		return s.matrices
	}

	rot := s.controller.Orientation().Mat4()
	for i, inst := range s.instances {
		sc := s.particles[i].Radius * inst.Scale
		m := rot.Mul4(mgl64.Translate3D(inst.Position[0], inst.Position[1], inst.Position[2])).
			Mul4(mgl64.Scale3D(sc, sc, sc))
		s.matrices = append(s.matrices, m)
	}
	return s.matrices
}

// particleRecords converts the layout for particles.csv.
func (s *Scene) particleRecords() []telemetry.ParticleRecord {
	points := make([]mgl64.Vec3, len(s.particles))
	for i, p := range s.particles {
		points[i] = p.Position
	}
	nn := sampling.NearestNeighborDistances(points)

	records := make([]telemetry.ParticleRecord, len(s.particles))
	for i, p := range s.particles {
		records[i] = telemetry.ParticleRecord{
			Index:      i,
			X:          p.Position[0],
			Y:          p.Position[1],
			Z:          p.Position[2],
			Radius:     p.Radius,
			SizeFactor: p.SizeFactor,
			NearestNN:  nn[i],
		}
	}
	return records
}
