// Package sim runs the water grid with its sources, drains and telemetry.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/fluid"
	"github.com/pthm-cable/slosh/frame"
	"github.com/pthm-cable/slosh/systems"
	"github.com/pthm-cable/slosh/telemetry"
)

// Options configures a Runner beyond the loaded config.
type Options struct {
	Seed          int64
	OutputDir     string                      // CSV and config output (empty = disabled)
	LogStats      bool                        // Log window stats via slog
	Workers       int                         // Overrides physics.workers when > 0
	StatsCallback func(telemetry.WindowStats) // Called on every window flush
}

// Runner owns a grid and advances it one tick at a time.
type Runner struct {
	cfg  *config.Config
	opts Options

	grid     *fluid.Grid
	solver   *fluid.Solver
	emitters *systems.Emitters
	dt       float32
	tick     int32

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	lastStats     telemetry.WindowStats
}

// New builds a runner from cfg. The grid is seeded from opts.Seed.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	workers := cfg.Physics.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	r := &Runner{
		cfg:           cfg,
		opts:          opts,
		solver:        fluid.NewSolver(workers),
		dt:            cfg.Derived.DT32,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32, cfg.Derived.Threshold32),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	if err := r.Reset(opts.Seed); err != nil {
		r.solver.Close()
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		r.solver.Close()
		return nil, fmt.Errorf("creating output: %w", err)
	}
	r.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	return r, nil
}

// Reset rebuilds the grid and emitters from config and restarts at tick 0.
func (r *Runner) Reset(seed int64) error {
	g, err := BuildGrid(r.cfg, seed)
	if err != nil {
		return fmt.Errorf("building grid: %w", err)
	}
	r.grid = g
	r.emitters = buildEmitters(r.cfg, g)
	r.tick = 0
	r.collector.Reset(0)
	r.lastStats = telemetry.WindowStats{}
	return nil
}

// BuildGrid creates the starting field for cfg.Init.Mode.
func BuildGrid(cfg *config.Config, seed int64) (*fluid.Grid, error) {
	w, h, l := cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.Depth
	if cfg.Init.Mode == config.InitRandom {
		return fluid.New(w, h, l, rand.New(rand.NewSource(seed)))
	}

	g, err := fluid.FromFlat(w, h, l, make([]float32, w*h*l))
	if err != nil {
		return nil, err
	}
	level := float32(cfg.Init.PoolLevel)

	switch cfg.Init.Mode {
	case config.InitPool:
		for x := 1; x < w-1; x++ {
			for y := 1; y <= cfg.Init.PoolDepth; y++ {
				for z := 1; z < l-1; z++ {
					g.Set(fluid.Addr{X: x, Y: y, Z: z}, level)
				}
			}
		}
	case config.InitColumn:
		for y := 1; y < h-1; y++ {
			g.Set(fluid.Addr{X: w / 2, Y: y, Z: l / 2}, level)
		}
	case config.InitNoise:
		noise := opensimplex.NewNormalized32(seed)
		s := float32(cfg.Init.NoiseScale)
		for x := 1; x < w-1; x++ {
			for y := 1; y < h-1; y++ {
				for z := 1; z < l-1; z++ {
					n := noise.Eval3(float32(x)*s, float32(y)*s, float32(z)*s)
					g.Set(fluid.Addr{X: x, Y: y, Z: z}, n*level)
				}
			}
		}
	}
	return g, nil
}

func buildEmitters(cfg *config.Config, g *fluid.Grid) *systems.Emitters {
	e := systems.NewEmitters()
	for _, s := range cfg.Sources {
		a := fluid.Addr{X: s.X, Y: s.Y, Z: s.Z}
		if !g.InBounds(a) {
			slog.Warn("source outside writable interior", "x", s.X, "y", s.Y, "z", s.Z)
		}
		e.AddSource(a, float32(s.Rate), float32(s.Budget))
	}
	for _, d := range cfg.Drains {
		a := fluid.Addr{X: d.X, Y: d.Y, Z: d.Z}
		if !g.InBounds(a) {
			slog.Warn("drain outside writable interior", "x", d.X, "y", d.Y, "z", d.Z)
		}
		e.AddDrain(a, float32(d.Rate))
	}
	return e
}

// Step advances the simulation by one tick.
func (r *Runner) Step() {
	r.perfCollector.StartTick()

	before := float64(r.grid.TotalMass())

	r.perfCollector.StartPhase(telemetry.PhaseEmitters)
	injected, drained := r.emitters.Apply(r.grid, r.dt)
	r.collector.RecordInjected(injected)
	r.collector.RecordDrained(drained)

	r.perfCollector.StartPhase(telemetry.PhaseAdvection)
	r.solver.Step(r.grid, r.dt)
	r.tick++

	r.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	after := float64(r.grid.TotalMass())
	r.collector.RecordBoundaryLoss(before + injected - drained - after)
	r.flushTelemetry()

	r.perfCollector.EndTick()
}

// flushTelemetry emits window stats when the window is complete.
func (r *Runner) flushTelemetry() {
	if !r.collector.ShouldFlush(r.tick) {
		return
	}

	stats := r.collector.Flush(r.tick, r.grid)
	perfStats := r.perfCollector.Stats()
	r.lastStats = stats

	if r.opts.StatsCallback != nil {
		r.opts.StatsCallback(stats)
	}
	if r.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}
	if err := r.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := r.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// Pour adds amount to the top interior cell of column (x, z).
// Returns false if the column is not writable.
func (r *Runner) Pour(x, z int, amount float32) bool {
	_, h, _ := r.grid.Dims()
	a := fluid.Addr{X: x, Y: h - 2, Z: z}
	if !r.grid.InBounds(a) || amount <= 0 {
		return false
	}
	level, _ := r.grid.Get(a)
	r.grid.Set(a, level+amount)
	r.collector.RecordInjected(float64(amount))
	return true
}

// Frame captures the cells above threshold at the current tick.
func (r *Runner) Frame(threshold float32) frame.Frame {
	return frame.Capture(r.tick, r.grid, threshold)
}

// SetDT changes the timestep. Negative values are clamped to 0.
func (r *Runner) SetDT(dt float32) { r.dt = max(dt, 0) }

// DT returns the current timestep.
func (r *Runner) DT() float32 { return r.dt }

// Grid returns the simulated grid.
func (r *Runner) Grid() *fluid.Grid { return r.grid }

// Emitters returns the sources and drains.
func (r *Runner) Emitters() *systems.Emitters { return r.emitters }

// Tick returns the number of completed steps since the last reset.
func (r *Runner) Tick() int32 { return r.tick }

// LastStats returns the most recently flushed window.
func (r *Runner) LastStats() telemetry.WindowStats { return r.lastStats }

// Perf returns the rolling step timing.
func (r *Runner) Perf() *telemetry.PerfCollector { return r.perfCollector }

// Close stops the solver workers and closes output files.
func (r *Runner) Close() error {
	r.solver.Close()
	return r.outputManager.Close()
}
