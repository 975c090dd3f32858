// Noise init preview tool - shows one depth slice of the noise starting
// field with sliders, and saves the chosen values as a config file.
//
// Usage: go run ./cmd/noisepreview [-config base.yaml] [-out noise.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/frame"
	"github.com/pthm-cable/slosh/sim"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// previewParams holds the slider values.
type previewParams struct {
	Scale     float32
	Level     float32
	Threshold float32
	Z         int
	Seed      int64
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outPath := flag.String("out", "noise.yaml", "Where Save writes the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Init.Mode = config.InitNoise

	w, h, l := cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.Depth
	params := previewParams{
		Scale:     float32(cfg.Init.NoiseScale),
		Level:     float32(cfg.Init.PoolLevel),
		Threshold: cfg.Derived.Threshold32,
		Z:         l / 2,
		Seed:      1,
	}

	rl.InitWindow(windowWidth, windowHeight, "Noise Init Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(w, h, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	pixels := make([]color.RGBA, w*h)
	var levels []float32
	var mass float32
	status := ""
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			cfg.Init.NoiseScale = float64(params.Scale)
			cfg.Init.PoolLevel = float64(params.Level)
			g, err := sim.BuildGrid(cfg, params.Seed)
			if err != nil {
				log.Fatalf("building grid: %v", err)
			}
			levels = g.Levels()
			mass = g.TotalMass()
			needsRegen = false
		}
		fillPixels(pixels, frame.Slice(levels, w, h, l, params.Z), params.Threshold, h)
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(w), Height: float32(h)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		occupied := len(frame.Occupied(levels, w, h, l, params.Threshold))
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Mass: %.1f  Visible cells: %d / %d", mass, occupied, len(levels)), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(status, 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Noise Init Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		if v := slider(panelX, &panelY, "Scale (noise frequency per cell)", "0.01", "1.0", params.Scale, 0.01, 1.0, "%.3f"); v != params.Scale {
			params.Scale = v
			needsRegen = true
		}
		if v := slider(panelX, &panelY, "Level (peak water level)", "0.1", "2.0", params.Level, 0.1, 2.0, "%.2f"); v != params.Level {
			params.Level = v
			needsRegen = true
		}
		params.Threshold = slider(panelX, &panelY, "Threshold (drawn above)", "0.01", "1.0", params.Threshold, 0.01, 1.0, "%.2f")
		params.Z = int(slider(panelX, &panelY, "Slice depth", "0", fmt.Sprint(l-1), float32(params.Z), 0, float32(l-1), "%.0f"))
		if v := int64(slider(panelX, &panelY, "Seed", "1", "9999", float32(params.Seed), 1, 9999, "%.0f")); v != params.Seed {
			params.Seed = v
			needsRegen = true
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Save config") {
			cfg.Render.Threshold = float64(params.Threshold)
			if err := cfg.WriteYAML(*outPath); err != nil {
				status = fmt.Sprintf("save failed: %v", err)
			} else {
				status = fmt.Sprintf("saved %s (run with -seed %d)", *outPath, params.Seed)
			}
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled raygui slider and advances y past it.
func slider(x float32, y *float32, label, minText, maxText string, value, lo, hi float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		minText, maxText,
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v
}

// fillPixels maps a slice to greyscale, tinting cells above threshold blue.
// Image row 0 is the top of the grid.
func fillPixels(dst []color.RGBA, slice [][]float32, threshold float32, h int) {
	for x := range slice {
		for y, v := range slice[x] {
			c := uint8(min(max(v, 0), 1) * 255)
			px := color.RGBA{R: c, G: c, B: c, A: 255}
			if v > threshold {
				px = color.RGBA{R: c / 4, G: c / 2, B: c, A: 255}
			}
			dst[(h-1-y)*len(slice)+x] = px
		}
	}
}
