// Package renderer draws the water volume with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slosh/fluid"
	"github.com/pthm-cable/slosh/frame"
)

// Voxels draws visible cells as cubes inside the domain wireframe.
type Voxels struct {
	cellSize float32

	shallow, deep rl.Color
	shell         rl.Color
	source, drain rl.Color
}

// NewVoxels creates a voxel renderer with cells cellSize world units wide.
func NewVoxels(cellSize float32) *Voxels {
	return &Voxels{
		cellSize: cellSize,
		shallow:  rl.Color{R: 140, G: 210, B: 255, A: 140},
		deep:     rl.Color{R: 20, G: 70, B: 190, A: 230},
		shell:    rl.Color{R: 90, G: 110, B: 130, A: 255},
		source:   rl.Color{R: 250, G: 220, B: 90, A: 255},
		drain:    rl.Color{R: 230, G: 90, B: 80, A: 255},
	}
}

// center returns the world position of a cell's centre.
func (v *Voxels) center(x, y, z int) rl.Vector3 {
	return rl.Vector3{
		X: (float32(x) + 0.5) * v.cellSize,
		Y: (float32(y) + 0.5) * v.cellSize,
		Z: (float32(z) + 0.5) * v.cellSize,
	}
}

// Draw renders the frame. Must be called between BeginMode3D and EndMode3D.
func (v *Voxels) Draw(f frame.Frame, sources, drains []fluid.Addr) {
	size := v.cellSize * 0.96

	for _, c := range f.Cells {
		rl.DrawCube(v.center(c.X, c.Y, c.Z), size, size, size, v.levelColor(c.Level, f.Threshold))
	}

	marker := v.cellSize * 0.4
	for _, a := range sources {
		rl.DrawCubeWires(v.center(a.X, a.Y, a.Z), marker, marker, marker, v.source)
	}
	for _, a := range drains {
		rl.DrawCubeWires(v.center(a.X, a.Y, a.Z), marker, marker, marker, v.drain)
	}

	v.drawDomain(f.W, f.H, f.L)
}

// drawDomain outlines the whole lattice, absorbing shell included.
func (v *Voxels) drawDomain(w, h, l int) {
	cs := v.cellSize
	mid := rl.Vector3{X: float32(w) * cs / 2, Y: float32(h) * cs / 2, Z: float32(l) * cs / 2}
	rl.DrawCubeWires(mid, float32(w)*cs, float32(h)*cs, float32(l)*cs, v.shell)
}

// levelColor shades from shallow at threshold to deep at threshold+1.
func (v *Voxels) levelColor(level, threshold float32) rl.Color {
	t := min(max(level-threshold, 0), 1)
	return rl.Color{
		R: lerp8(v.shallow.R, v.deep.R, t),
		G: lerp8(v.shallow.G, v.deep.G, t),
		B: lerp8(v.shallow.B, v.deep.B, t),
		A: lerp8(v.shallow.A, v.deep.A, t),
	}
}

func lerp8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}
