package telemetry

import (
	"math"

	"github.com/pthm-cable/slosh/fluid"
	"gonum.org/v1/gonum/floats"
)

// Collector accumulates water flows within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float32
	threshold           float32

	// Current window tracking
	windowStartTick int32

	// Flow totals for current window
	injected     float64
	drained      float64
	boundaryLoss float64

	// Scratch buffers reused across flushes
	masses []float64
	speeds []float64
	wet    []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
// threshold: level above which a cell counts as occupied
func NewCollector(windowDurationSec float64, dt, threshold float32) *Collector {
	ticksPerWindow := int32(60)
	if dt > 0 {
		ticksPerWindow = int32(math.Round(windowDurationSec / float64(dt)))
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		threshold:           threshold,
	}
}

// RecordInjected adds level injected by sources.
func (c *Collector) RecordInjected(v float64) { c.injected += v }

// RecordDrained adds level removed by drains.
func (c *Collector) RecordDrained(v float64) { c.drained += v }

// RecordBoundaryLoss adds level absorbed by the shell during a step.
func (c *Collector) RecordBoundaryLoss(v float64) { c.boundaryLoss += v }

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the grid state and the flows recorded
// since the last flush, then resets the flow totals.
func (c *Collector) Flush(currentTick int32, g *fluid.Grid) WindowStats {
	levels := g.Levels()
	if cap(c.masses) < len(levels) {
		c.masses = make([]float64, len(levels))
	}
	c.masses = c.masses[:len(levels)]
	c.wet = c.wet[:0]

	var occupied int
	var occupiedMass float64
	for i, v := range levels {
		m := float64(v)
		c.masses[i] = m
		if v > 0 {
			c.wet = append(c.wet, m)
		}
		if v > c.threshold {
			occupied++
			occupiedMass += m
		}
	}
	c.speeds = g.Speeds(c.speeds)

	_, maxLevel := g.MaxLevel()
	p50, p90 := Quantiles(c.wet)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		TotalMass:     floats.Sum(c.masses),
		MaxLevel:      float64(maxLevel),
		OccupiedCells: occupied,
		OccupiedMass:  occupiedMass,
		LevelP50:      p50,
		LevelP90:      p90,
		MeanSpeed:     MeanSpeed(c.speeds, c.masses),
		KineticEnergy: g.KineticEnergy(),

		Injected:     c.injected,
		Drained:      c.drained,
		BoundaryLoss: c.boundaryLoss,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.injected = 0
	c.drained = 0
	c.boundaryLoss = 0

	return stats
}

// Reset restarts the window at tick and drops recorded flows.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.injected = 0
	c.drained = 0
	c.boundaryLoss = 0
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
