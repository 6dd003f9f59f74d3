package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/eyeball/config"
)

// ParticleRecord is one row of particles.csv.
type ParticleRecord struct {
	Index      int     `csv:"index"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	Z          float64 `csv:"z"`
	Radius     float64 `csv:"radius"`
	SizeFactor float64 `csv:"size_factor"`
	NearestNN  float64 `csv:"nearest"`
}

// csvStream appends records to a CSV file, writing the header once.
type csvStream struct {
	file          *os.File
	headerWritten bool
}

func (s *csvStream) write(records any) error {
	if !s.headerWritten {
		if err := gocsv.Marshal(records, s.file); err != nil {
			return err
		}
		s.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, s.file)
}

// OutputManager handles run output: frames.csv and perf.csv streams, plus
// one-shot particles.csv and config.yaml.
type OutputManager struct {
	dir    string
	frames csvStream
	perf   csvStream
}

// NewOutputManager creates the output directory and opens the streams.
// Returns nil if dir is empty (output disabled); all methods accept a nil
// manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "frames.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating frames.csv: %w", err)
	}
	om.frames.file = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.frames.file.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perf.file = f

	return om, nil
}

// WriteConfig saves the configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends a window stats record to frames.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.frames.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteParticles writes the particle layout to particles.csv.
func (om *OutputManager) WriteParticles(records []ParticleRecord) error {
	if om == nil {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, "particles.csv"))
	if err != nil {
		return fmt.Errorf("creating particles.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing particles: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes the output streams.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.frames.file, om.perf.file} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
