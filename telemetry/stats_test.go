package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pthm-cable/slosh/fluid"
)

func TestQuantiles(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p50, p90 float64
	}{
		{"empty slice", []float64{}, 0, 0},
		{"single element", []float64{5}, 5, 5},
		{"ten values", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 5, 9},
		{"odd count", []float64{3, 1, 2}, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p50, p90 := Quantiles(tt.values)
			if p50 != tt.p50 || p90 != tt.p90 {
				t.Errorf("Quantiles = (%v, %v), want (%v, %v)", p50, p90, tt.p50, tt.p90)
			}
		})
	}
}

func TestMeanSpeedIsMassWeighted(t *testing.T) {
	speeds := []float64{1, 10}
	masses := []float64{3, 1}

	// (3·1 + 1·10) / 4
	if got := MeanSpeed(speeds, masses); math.Abs(got-3.25) > 1e-9 {
		t.Errorf("MeanSpeed = %v, want 3.25", got)
	}
	if got := MeanSpeed(speeds, []float64{0, 0}); got != 0 {
		t.Errorf("MeanSpeed with no mass = %v, want 0", got)
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.1, 0.4)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("expected 10 ticks per window, got %d", c.WindowDurationTicks())
	}
	if c.ShouldFlush(9) {
		t.Error("should not flush before window end")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at window end")
	}

	zero := NewCollector(1.0, 0, 0.4)
	if zero.WindowDurationTicks() < 1 {
		t.Errorf("zero dt produced window of %d ticks", zero.WindowDurationTicks())
	}
}

func TestCollectorFlush(t *testing.T) {
	levels := make([]float32, 4*4*4)
	g, err := fluid.FromFlat(4, 4, 4, levels)
	if err != nil {
		t.Fatalf("FromFlat: %v", err)
	}
	g.Set(fluid.Addr{X: 1, Y: 1, Z: 1}, 2)
	g.Set(fluid.Addr{X: 2, Y: 2, Z: 2}, 0.2)
	g.SetVelocity(fluid.Addr{X: 1, Y: 1, Z: 1}, mgl32.Vec3{1, 0, 0})

	c := NewCollector(1.0, 0.1, 0.4)
	c.RecordInjected(1.5)
	c.RecordDrained(0.5)
	c.RecordBoundaryLoss(0.25)

	s := c.Flush(10, g)

	if s.WindowStartTick != 0 || s.WindowEndTick != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", s.WindowStartTick, s.WindowEndTick)
	}
	if math.Abs(s.SimTimeSec-1.0) > 1e-6 {
		t.Errorf("sim time = %v, want 1.0", s.SimTimeSec)
	}
	if math.Abs(s.TotalMass-2.2) > 1e-6 {
		t.Errorf("total mass = %v, want 2.2", s.TotalMass)
	}
	if s.OccupiedCells != 1 || s.OccupiedMass != 2 {
		t.Errorf("occupied = %d cells %v mass, want 1 cell 2 mass", s.OccupiedCells, s.OccupiedMass)
	}
	if s.MaxLevel != 2 {
		t.Errorf("max level = %v, want 2", s.MaxLevel)
	}
	// Only the full cell moves: 2·1 / 2.2
	if math.Abs(s.MeanSpeed-2/2.2) > 1e-6 {
		t.Errorf("mean speed = %v, want %v", s.MeanSpeed, 2/2.2)
	}
	if s.KineticEnergy != 1 {
		t.Errorf("kinetic energy = %v, want 1", s.KineticEnergy)
	}
	if s.Injected != 1.5 || s.Drained != 0.5 || s.BoundaryLoss != 0.25 {
		t.Errorf("flows = %v/%v/%v", s.Injected, s.Drained, s.BoundaryLoss)
	}

	// Flows reset and the next window starts at the flush tick
	next := c.Flush(20, g)
	if next.WindowStartTick != 10 || next.Injected != 0 || next.BoundaryLoss != 0 {
		t.Errorf("second window not reset: %+v", next)
	}
}

func TestCollectorFlushRandomGrid(t *testing.T) {
	g, _ := fluid.New(6, 6, 6, rand.New(rand.NewSource(2)))
	s := NewCollector(1, 0.016, 0.4).Flush(1, g)

	if s.LevelP50 <= 0 || s.LevelP90 < s.LevelP50 || s.LevelP90 >= 1 {
		t.Errorf("unexpected quantiles p50=%v p90=%v", s.LevelP50, s.LevelP90)
	}
	if s.MeanSpeed != 0 {
		t.Errorf("fresh grid has mean speed %v", s.MeanSpeed)
	}
}
