package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// Background fills the screen with a vertical gradient behind the 3-D view.
type Background struct {
	screenW, screenH int32
	top, bottom      rl.Color
}

// NewBackground creates a background for the given screen size.
func NewBackground(screenW, screenH int32) *Background {
	return &Background{
		screenW: screenW,
		screenH: screenH,
		top:     rl.Color{R: 28, G: 36, B: 48, A: 255},
		bottom:  rl.Color{R: 8, G: 10, B: 16, A: 255},
	}
}

// Resize updates the screen size.
func (b *Background) Resize(screenW, screenH int32) {
	b.screenW, b.screenH = screenW, screenH
}

// Draw renders the gradient. Call outside 3-D mode.
func (b *Background) Draw() {
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, b.top, b.bottom)
}
