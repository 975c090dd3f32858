// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Init modes for the starting water field.
const (
	InitRandom = "random" // uniform [0,1) per cell
	InitEmpty  = "empty"  // all zero
	InitPool   = "pool"   // flat pool on the floor
	InitColumn = "column" // single column at the centre
	InitNoise  = "noise"  // coherent simplex noise
)

// Config holds all simulation configuration parameters.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Init      InitConfig      `yaml:"init"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Sources   []SourceConfig  `yaml:"sources"`
	Drains    []DrainConfig   `yaml:"drains"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Stream    StreamConfig    `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds lattice dimensions in cells.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`
}

// InitConfig selects the starting water field.
type InitConfig struct {
	Mode       string  `yaml:"mode"`        // random, empty, pool, column, noise
	PoolDepth  int     `yaml:"pool_depth"`  // Interior layers filled by pool mode
	PoolLevel  float64 `yaml:"pool_level"`  // Level written by pool and column modes
	NoiseScale float64 `yaml:"noise_scale"` // Noise frequency per cell
}

// PhysicsConfig holds stepping parameters.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`
	Workers int     `yaml:"workers"` // 0 = GOMAXPROCS, 1 = serial
}

// SourceConfig places a water source on a lattice cell.
type SourceConfig struct {
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Z      int     `yaml:"z"`
	Rate   float64 `yaml:"rate"`   // Level added per second
	Budget float64 `yaml:"budget"` // Total level before the source dries up (0 = unlimited)
}

// DrainConfig places a drain on a lattice cell.
type DrainConfig struct {
	X    int     `yaml:"x"`
	Y    int     `yaml:"y"`
	Z    int     `yaml:"z"`
	Rate float64 `yaml:"rate"` // Level removed per second
}

// RenderConfig holds display settings.
type RenderConfig struct {
	ScreenWidth  int     `yaml:"screen_width"`
	ScreenHeight int     `yaml:"screen_height"`
	TargetFPS    int     `yaml:"target_fps"`
	Threshold    float64 `yaml:"threshold"` // Level above which a cell is drawn
	CellSize     float64 `yaml:"cell_size"` // World units per cell
	PourRate     float64 `yaml:"pour_rate"` // Level added per pour action
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of sim time per stats row
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// StreamConfig holds websocket streaming parameters.
type StreamConfig struct {
	Addr       string `yaml:"addr"`
	EveryTicks int    `yaml:"every_ticks"` // Broadcast a frame every N ticks
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32 // Physics.DT as float32
	Threshold32 float32 // Render.Threshold as float32
	Cells       int     // Grid.Width * Grid.Height * Grid.Depth
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks values that would make the simulation meaningless.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 || c.Grid.Depth <= 0 {
		errs = append(errs, fmt.Errorf("grid dimensions must be positive, got %dx%dx%d",
			c.Grid.Width, c.Grid.Height, c.Grid.Depth))
	}
	if c.Physics.DT < 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be non-negative, got %g", c.Physics.DT))
	}
	if c.Render.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("render.threshold must be positive, got %g", c.Render.Threshold))
	}
	switch c.Init.Mode {
	case InitRandom, InitEmpty, InitPool, InitColumn, InitNoise:
	default:
		errs = append(errs, fmt.Errorf("init.mode %q is not one of random, empty, pool, column, noise", c.Init.Mode))
	}
	if c.Init.Mode == InitNoise && c.Init.NoiseScale <= 0 {
		errs = append(errs, fmt.Errorf("init.noise_scale must be positive, got %g", c.Init.NoiseScale))
	}
	for i, s := range c.Sources {
		if s.Rate < 0 || s.Budget < 0 {
			errs = append(errs, fmt.Errorf("sources[%d]: rate and budget must be non-negative", i))
		}
	}
	for i, d := range c.Drains {
		if d.Rate < 0 {
			errs = append(errs, fmt.Errorf("drains[%d]: rate must be non-negative", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Threshold32 = float32(c.Render.Threshold)
	c.Derived.Cells = c.Grid.Width * c.Grid.Height * c.Grid.Depth

	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
	if c.Stream.EveryTicks < 1 {
		c.Stream.EveryTicks = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
