// Package game runs the simulation inside a raylib window.
package game

import (
	"log/slog"

	"github.com/pthm-cable/slosh/camera"
	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/frame"
	"github.com/pthm-cable/slosh/renderer"
	"github.com/pthm-cable/slosh/sim"
	"github.com/pthm-cable/slosh/ui"
)

// Options configures a graphical session.
type Options struct {
	Sim sim.Options

	// Broadcast receives a frame every StreamEvery ticks (nil = disabled).
	Broadcast   func(frame.Frame)
	StreamEvery int
}

// Game holds the runner and everything needed to draw it.
type Game struct {
	cfg    *config.Config
	opts   Options
	runner *sim.Runner

	camera     *camera.Orbit
	background *renderer.Background
	voxels     *renderer.Voxels
	hud        *ui.HUD
	controls   *ui.ControlsPanel

	settings ui.Settings
	frame    frame.Frame // Last captured frame, redrawn while paused

	// State
	paused   bool
	stepOnce bool
	seed     int64

	screenWidth, screenHeight int32
}

// NewGame builds a game. The raylib window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	runner, err := sim.New(cfg, opts.Sim)
	if err != nil {
		return nil, err
	}
	if opts.StreamEvery < 1 {
		opts.StreamEvery = 1
	}

	w, h, l := runner.Grid().Dims()
	cs := float32(cfg.Render.CellSize)
	sw, sh := int32(cfg.Render.ScreenWidth), int32(cfg.Render.ScreenHeight)

	g := &Game{
		cfg:          cfg,
		opts:         opts,
		runner:       runner,
		camera:       camera.ForVolume(float32(w), float32(h), float32(l), cs),
		background:   renderer.NewBackground(sw, sh),
		voxels:       renderer.NewVoxels(cs),
		hud:          ui.NewHUD(),
		controls:     ui.NewControlsPanel(sw-250, 10, 240),
		seed:         opts.Sim.Seed,
		screenWidth:  sw,
		screenHeight: sh,
		settings: ui.Settings{
			DT:        cfg.Derived.DT32,
			Threshold: cfg.Derived.Threshold32,
			PourRate:  float32(cfg.Render.PourRate),
		},
	}
	g.frame = runner.Frame(g.settings.Threshold)
	return g, nil
}

// Update handles input and advances the simulation unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.runner.Perf().RecordFrame()

	if g.paused && !g.stepOnce {
		// Threshold may have moved while paused
		g.frame = g.runner.Frame(g.settings.Threshold)
		return
	}
	g.stepOnce = false
	g.step()
}

func (g *Game) step() {
	g.runner.SetDT(g.settings.DT)
	g.runner.Step()
	g.frame = g.runner.Frame(g.settings.Threshold)

	if g.opts.Broadcast != nil && int(g.runner.Tick())%g.opts.StreamEvery == 0 {
		g.opts.Broadcast(g.frame)
	}
}

// reset rebuilds the grid with the starting seed.
func (g *Game) reset() {
	if err := g.runner.Reset(g.seed); err != nil {
		slog.Error("reset failed", "error", err)
		return
	}
	g.frame = g.runner.Frame(g.settings.Threshold)
	slog.Info("simulation reset", "seed", g.seed)
}

// pour drops water into the centre column.
func (g *Game) pour() {
	w, _, l := g.runner.Grid().Dims()
	if g.runner.Pour(w/2, l/2, g.settings.PourRate) {
		g.frame = g.runner.Frame(g.settings.Threshold)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 { return g.runner.Tick() }

// Unload releases the runner.
func (g *Game) Unload() {
	if err := g.runner.Close(); err != nil {
		slog.Error("closing runner", "error", err)
	}
}
