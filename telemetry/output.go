package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/slosh/config"
)

// csvFile appends gocsv records to a file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		c.headerWritten = true
		return gocsv.Marshal(records, c.f)
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager writes run output: stats.csv, perf.csv and config.yaml.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir   string
	stats *csvFile
	perf  *csvFile
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stats, err := createCSV(dir, "stats.csv")
	if err != nil {
		return nil, err
	}
	perf, err := createCSV(dir, "perf.csv")
	if err != nil {
		stats.f.Close()
		return nil, err
	}
	return &OutputManager{dir: dir, stats: stats, perf: perf}, nil
}

// WriteConfig saves the run configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends a window stats row to stats.csv.
func (om *OutputManager) WriteStats(s WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.stats.write([]WindowStats{s}); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WritePerf appends a performance row to perf.csv.
func (om *OutputManager) WritePerf(s PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{s.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
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

// Close closes all output files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, c := range []io.Closer{om.stats.f, om.perf.f} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
