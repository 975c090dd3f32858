package main

import (
	"github.com/pthm-cable/slosh/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the emitter parameters searched by the tuner.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "source_rate_scale", Path: "sources[*].rate", Min: 0.1, Max: 4.0, Default: 1.0},
			{Name: "drain_rate", Path: "drains[*].rate", Min: 0, Max: 200, Default: 20},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig scales every source rate and sets every drain rate.
// A config without drains gets one on the floor below the centre.
// base holds the unscaled source rates, in cfg.Sources order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, base []float64, values []float64) {
	clamped := pv.Clamp(values)
	scale, drain := clamped[0], clamped[1]

	for i := range cfg.Sources {
		cfg.Sources[i].Rate = base[i] * scale
	}
	if len(cfg.Drains) == 0 {
		cfg.Drains = []config.DrainConfig{{X: cfg.Grid.Width / 2, Y: 1, Z: cfg.Grid.Depth / 2}}
	}
	for i := range cfg.Drains {
		cfg.Drains[i].Rate = drain
	}
}
