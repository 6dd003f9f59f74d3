package telemetry

// TickSample is what the scene reports after every tick.
type TickSample struct {
	Triggered        int
	Contact          bool
	Dragging         bool
	RotationVelocity float64
}

// EyeCensus describes the eyes at the end of a window.
type EyeCensus struct {
	Openness []float64 // Unclamped value per eye
	Opening  int
	Closing  int
	MaxScale float64
}

// Collector accumulates tick samples within windows and produces WindowStats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32

	triggers      int
	contactFrames int
	dragFrames    int
	rotationSum   float64
	rotationMax   float64
	samples       int
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// Record adds one tick to the current window.
func (c *Collector) Record(s TickSample) {
	c.triggers += s.Triggered
	if s.Contact {
		c.contactFrames++
	}
	if s.Dragging {
		c.dragFrames++
	}
	c.rotationSum += s.RotationVelocity
	if s.RotationVelocity > c.rotationMax {
		c.rotationMax = s.RotationVelocity
	}
	c.samples++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets the counters for the next window.
func (c *Collector) Flush(currentTick int32, simTimeMs float64, census EyeCensus) WindowStats {
	mean, p10, p50, p90 := Distribution(census.Openness)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTimeMs / 1000,

		Eyes:    len(census.Openness),
		Opening: census.Opening,
		Closing: census.Closing,

		Triggers:      c.triggers,
		ContactFrames: c.contactFrames,
		DragFrames:    c.dragFrames,
		RotationMax:   c.rotationMax,

		OpennessMean: mean,
		OpennessP10:  p10,
		OpennessP50:  p50,
		OpennessP90:  p90,
		MaxScale:     census.MaxScale,
	}
	if c.samples > 0 {
		stats.RotationMean = c.rotationSum / float64(c.samples)
	}

	*c = Collector{windowTicks: c.windowTicks, windowStartTick: currentTick}
	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
