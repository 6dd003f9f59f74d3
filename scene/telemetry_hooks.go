package scene

import (
	"log/slog"

	"github.com/pthm-cable/eyeball/telemetry"
)

// flushTelemetry emits window stats once the collector's window is full.
func (s *Scene) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.timeMs, s.census())
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		slog.Info("stats", "window", stats)
		slog.Info("perf", "window", perfStats)
	}

	if s.output != nil {
		if err := s.output.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// census samples the openness of every eye.
func (s *Scene) census() telemetry.EyeCensus {
	s.openness = s.openness[:0]
	query := s.blinkFilter.Query()
	for query.Next() {
		b := query.Get()
		s.openness = append(s.openness, b.Value)
	}

	st := s.eyes.Stats()
	return telemetry.EyeCensus{
		Openness: s.openness,
		Opening:  st.Opening,
		Closing:  st.Closing,
		MaxScale: st.MaxScale,
	}
}
