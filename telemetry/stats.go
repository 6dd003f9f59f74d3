package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated scene statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Eye counts at window end
	Eyes    int `csv:"eyes"`
	Opening int `csv:"opening"`
	Closing int `csv:"closing"`

	// Activity during the window
	Triggers      int `csv:"triggers"`
	ContactFrames int `csv:"contact_frames"`
	DragFrames    int `csv:"drag_frames"`

	// Rotation speed during the window, turns per target frame
	RotationMean float64 `csv:"rotation_mean"`
	RotationMax  float64 `csv:"rotation_max"`

	// Openness distribution at window end
	OpennessMean float64 `csv:"openness_mean"`
	OpennessP10  float64 `csv:"openness_p10"`
	OpennessP50  float64 `csv:"openness_p50"`
	OpennessP90  float64 `csv:"openness_p90"`
	MaxScale     float64 `csv:"max_scale"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// Distribution returns the mean and the 10th, 50th and 90th percentiles.
func Distribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return stat.Mean(sorted, nil), Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("eyes", s.Eyes),
		slog.Int("opening", s.Opening),
		slog.Int("closing", s.Closing),
		slog.Int("triggers", s.Triggers),
		slog.Int("contact_frames", s.ContactFrames),
		slog.Int("drag_frames", s.DragFrames),
		slog.Float64("rotation_mean", s.RotationMean),
		slog.Float64("rotation_max", s.RotationMax),
		slog.Float64("openness_mean", s.OpennessMean),
		slog.Float64("openness_p50", s.OpennessP50),
		slog.Float64("max_scale", s.MaxScale),
	)
}
