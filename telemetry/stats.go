package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Water state at window end
	TotalMass     float64 `csv:"total_mass"`
	MaxLevel      float64 `csv:"max_level"`
	OccupiedCells int     `csv:"occupied_cells"`
	OccupiedMass  float64 `csv:"occupied_mass"` // Level held by cells above the threshold
	LevelP50      float64 `csv:"level_p50"`     // Over wet cells
	LevelP90      float64 `csv:"level_p90"`
	MeanSpeed     float64 `csv:"mean_speed"` // Mass-weighted
	KineticEnergy float64 `csv:"kinetic_energy"`

	// Flows during window
	Injected     float64 `csv:"injected"`
	Drained      float64 `csv:"drained"`
	BoundaryLoss float64 `csv:"boundary_loss"` // Absorbed by the shell
}

// Quantiles returns the p50 and p90 of values. values is sorted in place.
// Returns zeros for an empty slice.
func Quantiles(values []float64) (p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sort.Float64s(values)
	return stat.Quantile(0.5, stat.Empirical, values, nil),
		stat.Quantile(0.9, stat.Empirical, values, nil)
}

// MeanSpeed returns the mass-weighted mean of speeds. Zero total mass yields 0.
func MeanSpeed(speeds, masses []float64) float64 {
	if floats.Sum(masses) == 0 {
		return 0
	}
	return stat.Mean(speeds, masses)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("total_mass", s.TotalMass),
		slog.Float64("max_level", s.MaxLevel),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Float64("occupied_mass", s.OccupiedMass),
		slog.Float64("level_p50", s.LevelP50),
		slog.Float64("level_p90", s.LevelP90),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("injected", s.Injected),
		slog.Float64("drained", s.Drained),
		slog.Float64("boundary_loss", s.BoundaryLoss),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
