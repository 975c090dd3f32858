package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/telemetry"
)

func TestComputeFitness(t *testing.T) {
	stats := []telemetry.WindowStats{
		{TotalMass: 10, Injected: 5},
		{TotalMass: 20, Injected: 5, BoundaryLoss: 2},
		{TotalMass: 40, Injected: 5},
		{TotalMass: 60, Injected: 5, BoundaryLoss: 2},
	}

	tests := []struct {
		name       string
		stats      []telemetry.WindowStats
		target     float64
		lossWeight float64
		want       float64
	}{
		{"on target, loss ignored", stats, 50, 0, 0},
		{"on target with loss", stats, 50, 1, 0.2},
		{"off target", stats, 25, 0, 1},
		{"no windows", nil, 50, 1, penalty},
		{"no target", stats, 0, 1, penalty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeFitness(tt.stats, tt.target, tt.lossWeight)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeFitness = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSettledMassUsesSecondHalf(t *testing.T) {
	stats := []telemetry.WindowStats{{TotalMass: 1}, {TotalMass: 2}, {TotalMass: 4}}
	// Second half of 3 windows starts at index 1
	if got := settledMass(stats); got != 3 {
		t.Errorf("settledMass = %f, want 3", got)
	}
}

func TestParamRoundtrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("param %s: roundtrip %f, want %f", pv.Specs[i].Name, back[i], def[i])
		}
	}

	clamped := pv.Clamp([]float64{-5, 1e6})
	if clamped[0] != pv.Specs[0].Min || clamped[1] != pv.Specs[1].Max {
		t.Errorf("Clamp = %v", clamped)
	}
}

func TestConfigDoesNotTouchBase(t *testing.T) {
	base, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	base.Drains = nil
	rate := base.Sources[0].Rate

	fe := NewFitnessEvaluator(NewParamVector(), 10, []int64{1}, base, 100, 0)
	cfg := fe.Config([]float64{2, 35})

	if cfg.Sources[0].Rate != 2*rate {
		t.Errorf("source rate = %f, want %f", cfg.Sources[0].Rate, 2*rate)
	}
	if len(cfg.Drains) != 1 || cfg.Drains[0].Rate != 35 {
		t.Errorf("drains = %+v, want one drain at rate 35", cfg.Drains)
	}
	if base.Sources[0].Rate != rate || len(base.Drains) != 0 {
		t.Error("base config was modified")
	}
}

func TestEvaluateRunsAllSeeds(t *testing.T) {
	base, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	base.Grid = config.GridConfig{Width: 8, Height: 8, Depth: 8}
	base.Init.Mode = config.InitEmpty
	base.Sources = []config.SourceConfig{{X: 4, Y: 5, Z: 4, Rate: 10}}
	base.Telemetry.StatsWindow = 0.16 // 10 ticks at dt 0.016

	fe := NewFitnessEvaluator(NewParamVector(), 40, []int64{1, 2}, base, 5, 0.5)
	f := fe.Evaluate(NewParamVector().DefaultVector())
	if f >= penalty || math.IsNaN(f) {
		t.Errorf("fitness = %f, expected a real score", f)
	}
	if fe.LastSettled() <= 0 {
		t.Errorf("LastSettled = %f, expected water to have settled", fe.LastSettled())
	}
}
