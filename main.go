package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/game"
	"github.com/pthm-cable/slosh/sim"
	"github.com/pthm-cable/slosh/stream"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	workers := flag.Int("workers", 0, "Solver workers (0 = use config)")
	serve := flag.Bool("serve", false, "Stream frames over websocket on stream.addr")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	simOpts := sim.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
		Workers:   *workers,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *stream.Hub
	if *serve {
		hub = stream.NewHub()
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.Stream.Addr); err != nil {
				slog.Error("stream server failed", "error", err)
			}
		}()
	}

	if *headless {
		if err := runHeadless(ctx, cfg, simOpts, hub, *maxTicks); err != nil {
			slog.Error("simulation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Render.ScreenWidth), int32(cfg.Render.ScreenHeight), "Slosh")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Render.TargetFPS))

	opts := game.Options{Sim: simOpts, StreamEvery: cfg.Stream.EveryTicks}
	if hub != nil {
		opts.Broadcast = hub.Broadcast
	}
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}

// runHeadless steps the simulation as fast as it can until maxTicks or
// ctx is cancelled. With a hub, frames are broadcast and client commands
// are applied between ticks.
func runHeadless(ctx context.Context, cfg *config.Config, opts sim.Options, hub *stream.Hub, maxTicks int) error {
	runner, err := sim.New(cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			slog.Error("closing runner", "error", err)
		}
	}()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"cells", cfg.Derived.Cells,
		"serve", hub != nil,
	)

	paused := false
	for ctx.Err() == nil {
		if hub != nil {
			paused = applyCommands(runner, hub, opts.Seed, cfg.Derived.Threshold32, paused)
			if paused {
				// Nothing to do until a client resumes
				time.Sleep(10 * time.Millisecond)
				continue
			}
		}

		runner.Step()

		if hub != nil && int(runner.Tick())%cfg.Stream.EveryTicks == 0 {
			hub.Broadcast(runner.Frame(cfg.Derived.Threshold32))
		}

		if maxTicks > 0 && int(runner.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", runner.Tick())
			return nil
		}
	}
	slog.Info("interrupted", "tick", runner.Tick())
	return nil
}

// applyCommands drains queued client commands and returns the new paused state.
func applyCommands(runner *sim.Runner, hub *stream.Hub, seed int64, threshold float32, paused bool) bool {
	for {
		select {
		case cmd := <-hub.Commands():
			switch cmd.Type {
			case stream.CmdPause:
				paused = true
			case stream.CmdResume:
				paused = false
			case stream.CmdReset:
				if err := runner.Reset(seed); err != nil {
					slog.Error("reset failed", "error", err)
				}
				hub.Broadcast(runner.Frame(threshold))
			case stream.CmdPour:
				if !runner.Pour(cmd.X, cmd.Z, cmd.Amount) {
					slog.Warn("pour outside interior", "x", cmd.X, "z", cmd.Z)
				}
			default:
				slog.Warn("unknown command", "type", cmd.Type)
			}
		default:
			return paused
		}
	}
}
