// Command slice shows one depth slice of the water grid in a terminal.
//
// Usage: go run ./cmd/slice [-config file] [-seed n] [-z depth]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/sim"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	depth := flag.Int("z", -1, "Initial slice depth (-1 = middle)")
	workers := flag.Int("workers", 0, "Solver workers (0 = use config)")
	logPath := flag.String("log", "", "Write JSON logs to this file")
	flag.Parse()

	// The terminal is ours; logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := run(*configPath, *seed, *depth, *workers); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, depth, workers int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	runner, err := sim.New(cfg, sim.Options{Seed: seed, Workers: workers})
	if err != nil {
		return err
	}
	defer runner.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	w, h, l := runner.Grid().Dims()
	v := &view{w: w, h: h, l: l, z: l / 2}
	if depth >= 0 {
		v.z = min(depth, l-1)
	}

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Duration(float64(time.Second) * max(cfg.Physics.DT, 0.016)))
	defer ticker.Stop()

	paused := false
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if ev.Key() != tcell.KeyRune {
					continue
				}
				switch ev.Rune() {
				case 'q':
					return nil
				case ' ':
					paused = !paused
				case 'n':
					runner.Step()
				case '[':
					v.shift(-1)
				case ']':
					v.shift(1)
				case 'r':
					if err := runner.Reset(seed); err != nil {
						return err
					}
				case 'p':
					runner.Pour(w/2, v.z, float32(cfg.Render.PourRate))
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			if !paused {
				runner.Step()
			}
		}

		state := "running"
		if paused {
			state = "paused"
		}
		status := fmt.Sprintf("tick=%d mass=%.1f %s  [ ] slice  space pause  n step  p pour  r reset  q quit",
			runner.Tick(), runner.Grid().TotalMass(), state)
		v.draw(screen, runner.Grid().Levels(), status)
	}
}
