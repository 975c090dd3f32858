package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.pour()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}

	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth, g.screenHeight = w, h
	g.background.Resize(w, h)
}

// handleCameraInput processes orbit and zoom controls.
func (g *Game) handleCameraInput() {
	mouse := rl.GetMousePosition()

	// Drag to orbit, unless the drag is on the controls panel
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !g.controls.Contains(mouse) {
		d := rl.GetMouseDelta()
		g.camera.Rotate(-d.X*0.01, d.Y*0.01)
	}

	// Arrow keys orbit too
	const keyTurn = 0.03
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Rotate(keyTurn, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Rotate(-keyTurn, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Rotate(0, keyTurn)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Rotate(0, -keyTurn)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 - wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
