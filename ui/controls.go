package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Settings are the values the controls panel edits in place.
type Settings struct {
	DT        float32
	Threshold float32
	PourRate  float32
}

// Actions are the buttons pressed during one frame.
type Actions struct {
	TogglePause bool
	Step        bool
	Reset       bool
	Pour        bool
}

// ControlsPanel renders the right-side raygui panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Contains reports whether the screen point lies on the panel.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return rl.CheckCollisionPointRec(p, c.bounds())
}

func (c *ControlsPanel) bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: 300}
}

// Draw renders the panel, applies slider edits to s and returns pressed buttons.
func (c *ControlsPanel) Draw(s *Settings, paused bool) Actions {
	var act Actions
	if !c.visible {
		return act
	}

	r := c.renderer
	pad := r.Theme.Padding
	b := c.bounds()
	r.DrawPanel(c.x, c.y, c.width, int32(b.Height))

	x := float32(c.x + pad)
	y := float32(c.y + pad)
	inner := float32(c.width - 2*pad)
	half := (inner - 10) / 2

	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Simulation"))

	pauseText := "Pause"
	if paused {
		pauseText = "Resume"
	}
	act.TogglePause = gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, pauseText)
	act.Step = gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 26}, "Step")
	y += 34
	act.Reset = gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, "Reset")
	act.Pour = gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 26}, "Pour")
	y += 40

	y = c.slider(x, y, inner, "Timestep", &s.DT, 0, 0.05, "%.3f")
	y = c.slider(x, y, inner, "Threshold", &s.Threshold, 0.01, 2, "%.2f")
	c.slider(x, y, inner, "Pour amount", &s.PourRate, 0.5, 20, "%.1f")

	return act
}

// slider draws a labelled slider bar bound to v and returns the next Y.
func (c *ControlsPanel) slider(x, y, width float32, label string, v *float32, lo, hi float32, format string) float32 {
	th := c.renderer.Theme
	rl.DrawText(label, int32(x), int32(y), th.FontSize, th.LabelColor)
	y += float32(th.LineHeight)

	*v = gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: width - 60, Height: 18},
		"", "",
		*v, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, *v), int32(x+width-52), int32(y+2), th.FontSize, th.ValueColor)
	return y + 30
}
