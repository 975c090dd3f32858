package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/slosh/ui"
)

// Draw renders the current frame, HUD and controls.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	g.background.Draw()

	rl.BeginMode3D(g.camera3D())
	emitters := g.runner.Emitters()
	g.voxels.Draw(g.frame, emitters.Sources(), emitters.Drains())
	rl.EndMode3D()

	g.drawUI()
	rl.EndDrawing()
}

func (g *Game) drawUI() {
	grid := g.runner.Grid()
	_, maxLevel := grid.MaxLevel()
	emitters := g.runner.Emitters()

	g.hud.Draw(ui.HUDData{
		Title:        "Slosh",
		Tick:         g.runner.Tick(),
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		TotalMass:    grid.TotalMass(),
		MaxLevel:     maxLevel,
		Visible:      len(g.frame.Cells),
		Sources:      emitters.NumSources(),
		Drains:       emitters.NumDrains(),
		BoundaryLoss: g.runner.LastStats().BoundaryLoss,
		TickMicros:   g.runner.Perf().Stats().AvgTickDuration.Microseconds(),
		ScreenWidth:  g.screenWidth,
		ScreenHeight: g.screenHeight,
	})

	act := g.controls.Draw(&g.settings, g.paused)
	if act.TogglePause {
		g.paused = !g.paused
	}
	if act.Step {
		g.stepOnce = true
	}
	if act.Reset {
		g.reset()
	}
	if act.Pour {
		g.pour()
	}
}

// camera3D converts the orbit camera to raylib's camera.
func (g *Game) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   toRL(g.camera.Eye()),
		Target:     toRL(g.camera.Target),
		Up:         toRL(g.camera.Up()),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

func toRL(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v.X(), Y: v.Y(), Z: v.Z()}
}
