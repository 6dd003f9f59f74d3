// Package sampling generates blue-noise particle layouts on a sphere surface.
package sampling

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const emptyCell = -1

// SeparationGrid is a flat 3D cell grid over the box [0, size]^3.
// Cells are sized so that their diagonal equals the separation radius; a
// cell can therefore hold at most one accepted sample.
type SeparationGrid struct {
	cellSize float64
	dim      int // cells per axis
	reach    int // neighbour cells to scan per axis
	radiusSq float64
	cells    []int32 // index into points, or emptyCell
	points   []mgl64.Vec3
}

// NewSeparationGrid creates a grid covering a cube of the given edge length
// for samples at least radius apart.
func NewSeparationGrid(size, radius float64) *SeparationGrid {
	cellSize := radius / math.Sqrt(3)
	dim := int(math.Floor(size/cellSize)) + 1

	cells := make([]int32, dim*dim*dim)
	for i := range cells {
		cells[i] = emptyCell
	}

	return &SeparationGrid{
		cellSize: cellSize,
		dim:      dim,
		reach:    int(math.Ceil(radius / cellSize)),
		radiusSq: radius * radius,
		cells:    cells,
		points:   make([]mgl64.Vec3, 0, 64),
	}
}

// Dim returns the number of cells per axis.
func (g *SeparationGrid) Dim() int {
	return g.dim
}

// Len returns the number of accepted samples.
func (g *SeparationGrid) Len() int {
	return len(g.points)
}

// Points returns the accepted samples in insertion order.
func (g *SeparationGrid) Points() []mgl64.Vec3 {
	return g.points
}

// Insert stores p in its cell and returns its index. The caller must have
// checked Free(p) first.
func (g *SeparationGrid) Insert(p mgl64.Vec3) int {
	ix, iy, iz := g.cellCoords(p)
	idx := len(g.points)
	g.points = append(g.points, p)
	if c := g.cellIndex(ix, iy, iz); c >= 0 {
		g.cells[c] = int32(idx)
	}
	return idx
}

// Free reports whether no accepted sample lies closer than the separation
// radius to p.
func (g *SeparationGrid) Free(p mgl64.Vec3) bool {
	cx, cy, cz := g.cellCoords(p)

	for dz := -g.reach; dz <= g.reach; dz++ {
		for dy := -g.reach; dy <= g.reach; dy++ {
			for dx := -g.reach; dx <= g.reach; dx++ {
				c := g.cellIndex(cx+dx, cy+dy, cz+dz)
				if c < 0 || g.cells[c] == emptyCell {
					continue
				}
				if p.Sub(g.points[g.cells[c]]).LenSqr() < g.radiusSq {
					return false
				}
			}
		}
	}
	return true
}

// cellCoords returns the integer cell coordinates of p.
func (g *SeparationGrid) cellCoords(p mgl64.Vec3) (int, int, int) {
	return int(math.Floor(p[0] / g.cellSize)),
		int(math.Floor(p[1] / g.cellSize)),
		int(math.Floor(p[2] / g.cellSize))
}

// cellIndex returns the flat index for cell coordinates, or -1 when outside.
func (g *SeparationGrid) cellIndex(ix, iy, iz int) int {
	if ix < 0 || iy < 0 || iz < 0 || ix >= g.dim || iy >= g.dim || iz >= g.dim {
		return -1
	}
	return ix + iy*g.dim + iz*g.dim*g.dim
}
