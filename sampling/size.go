package sampling

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"
)

// SizeMode selects how per-particle size factors are drawn.
type SizeMode uint8

const (
	SizeRandom SizeMode = iota // Independent uniform factors
	SizeNoise                  // Spatially coherent OpenSimplex field
)

// ParseSizeMode maps a config string to a SizeMode.
func ParseSizeMode(s string) (SizeMode, error) {
	switch s {
	case "random", "":
		return SizeRandom, nil
	case "noise":
		return SizeNoise, nil
	}
	return SizeRandom, fmt.Errorf("unknown size mode %q", s)
}

// SizeField assigns a size factor in [Min, Max] to a surface direction.
type SizeField struct {
	Min, Max  float64
	Mode      SizeMode
	Frequency float64

	noise opensimplex.Noise
}

// NewSizeField creates a size field. The noise generator is seeded from rng
// so a fixed scene seed reproduces the same layout.
func NewSizeField(min, max float64, mode SizeMode, frequency float64, rng *rand.Rand) *SizeField {
	f := &SizeField{Min: min, Max: max, Mode: mode, Frequency: frequency}
	if mode == SizeNoise {
		f.noise = opensimplex.NewNormalized(rng.Int63())
	}
	return f
}

// Factor returns the size factor for a particle at local position p.
func (f *SizeField) Factor(p mgl64.Vec3, rng *rand.Rand) float64 {
	t := rng.Float64()
	if f.Mode == SizeNoise && f.noise != nil {
		dir := p
		if l := p.Len(); l > 0 {
			dir = p.Mul(1 / l)
		}
		t = f.noise.Eval3(dir[0]*f.Frequency, dir[1]*f.Frequency, dir[2]*f.Frequency)
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return f.Min + t*(f.Max-f.Min)
}
