package main

import (
	"math"
	"slices"
	"sync"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/sim"
	"github.com/pthm-cable/slosh/telemetry"
)

// penalty is returned when a run produced no usable windows.
const penalty = 1e9

// FitnessEvaluator runs headless simulations and scores how well the
// water mass settles on a target.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	baseRates  []float64
	targetMass float64
	lossWeight float64

	mu          sync.Mutex
	lastSettled float64 // mean settled mass from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetMass, lossWeight float64) *FitnessEvaluator {
	rates := make([]float64, len(baseCfg.Sources))
	for i, s := range baseCfg.Sources {
		rates[i] = s.Rate
	}
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		baseRates:  rates,
		targetMass: targetMass,
		lossWeight: lossWeight,
	}
}

// LastSettled returns the mean settled mass from the most recent evaluation.
func (fe *FitnessEvaluator) LastSettled() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSettled
}

// Evaluate computes fitness for raw parameter values (lower = better),
// averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.Config(x)

	type seedResult struct {
		fitness float64
		settled float64
	}
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			stats := fe.runSimulation(cfg, s)
			results[idx] = seedResult{
				fitness: computeFitness(stats, fe.targetMass, fe.lossWeight),
				settled: settledMass(stats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalSettled float64
	for _, r := range results {
		totalFitness += r.fitness
		totalSettled += r.settled
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastSettled = totalSettled / n
	fe.mu.Unlock()

	return totalFitness / n
}

// Config returns a copy of the base config with x applied.
func (fe *FitnessEvaluator) Config(x []float64) *config.Config {
	cfg := *fe.baseConfig
	cfg.Sources = slices.Clone(fe.baseConfig.Sources)
	cfg.Drains = slices.Clone(fe.baseConfig.Drains)
	fe.params.ApplyToConfig(&cfg, fe.baseRates, x)
	return &cfg
}

// runSimulation steps one seed to maxTicks and returns every window flushed.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	var stats []telemetry.WindowStats
	r, err := sim.New(cfg, sim.Options{
		Seed:    seed,
		Workers: 1, // seeds already run in parallel
		StatsCallback: func(s telemetry.WindowStats) {
			stats = append(stats, s)
		},
	})
	if err != nil {
		return nil
	}
	defer r.Close()

	for r.Tick() < fe.maxTicks {
		r.Step()
	}
	return stats
}

// settledMass is the mean total mass over the second half of the windows.
func settledMass(stats []telemetry.WindowStats) float64 {
	if len(stats) == 0 {
		return 0
	}
	tail := stats[len(stats)/2:]
	var sum float64
	for _, s := range tail {
		sum += s.TotalMass
	}
	return sum / float64(len(tail))
}

// computeFitness combines the relative distance of the settled mass from
// target with the share of injected water lost through the shell.
func computeFitness(stats []telemetry.WindowStats, target, lossWeight float64) float64 {
	if len(stats) == 0 || target <= 0 {
		return penalty
	}
	rel := (settledMass(stats) - target) / target

	var injected, lost float64
	for _, s := range stats {
		injected += s.Injected
		lost += s.BoundaryLoss
	}
	lossFrac := 0.0
	if injected > 0 {
		lossFrac = math.Max(lost, 0) / injected
	}
	return rel*rel + lossWeight*lossFrac
}
