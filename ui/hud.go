package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Tick         int32
	FPS          int32
	Paused       bool
	TotalMass    float32
	MaxLevel     float32
	Visible      int // Cells drawn this frame
	Sources      int
	Drains       int
	BoundaryLoss float64 // Last stats window
	TickMicros   int64
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Mass: %.1f | Max level: %.2f | Visible cells: %d", data.TotalMass, data.MaxLevel, data.Visible),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Step: %dus | Sources: %d | Drains: %d | Shell loss: %.2f",
			data.Tick, data.FPS, data.TickMicros, data.Sources, data.Drains, data.BoundaryLoss),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	help := "[Space] Pause  [N] Step  [R] Reset  [P] Pour  [Tab] Panel  Drag: orbit  Wheel: zoom"
	helpWidth := rl.MeasureText(help, 14)
	rl.DrawText(help, (data.ScreenWidth-helpWidth)/2, data.ScreenHeight-24, 14, rl.Gray)
}
