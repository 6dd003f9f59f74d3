package sampling

import (
	"log/slog"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes the nearest-neighbour distances of a point set.
type Report struct {
	Count       int
	MinDistance float64
	MeanNN      float64
	StdNN       float64
	P10         float64
	P50         float64
	P90         float64
}

// NearestNeighborDistances returns, for each point, the distance to its
// closest other point. O(n^2).
func NearestNeighborDistances(points []mgl64.Vec3) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		best := math.Inf(1)
		for j, q := range points {
			if i == j {
				continue
			}
			if d := p.Sub(q).LenSqr(); d < best {
				best = d
			}
		}
		out[i] = math.Sqrt(best)
	}
	return out
}

// Analyze computes a Report for points.
func Analyze(points []mgl64.Vec3) Report {
	if len(points) < 2 {
		return Report{Count: len(points)}
	}

	nn := NearestNeighborDistances(points)
	sort.Float64s(nn)

	mean, std := stat.MeanStdDev(nn, nil)
	return Report{
		Count:       len(points),
		MinDistance: nn[0],
		MeanNN:      mean,
		StdNN:       std,
		P10:         stat.Quantile(0.1, stat.Empirical, nn, nil),
		P50:         stat.Quantile(0.5, stat.Empirical, nn, nil),
		P90:         stat.Quantile(0.9, stat.Empirical, nn, nil),
	}
}

// OverlapEnergy is the potential the repulsion step descends: the sum over
// overlapping pairs of ln((r_i + r_j) / d). Zero when nothing overlaps.
func OverlapEnergy(points []mgl64.Vec3, radii []float64) float64 {
	var e float64
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			reach := radii[i] + radii[j]
			d := points[i].Sub(points[j]).Len()
			if d > 0 && d < reach {
				e += math.Log(reach / d)
			}
		}
	}
	return e
}

// LogValue implements slog.LogValuer for structured logging.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", r.Count),
		slog.Float64("min_distance", r.MinDistance),
		slog.Float64("mean_nn", r.MeanNN),
		slog.Float64("std_nn", r.StdNN),
		slog.Float64("p10", r.P10),
		slog.Float64("p50", r.P50),
		slog.Float64("p90", r.P90),
	)
}
