// Package frame extracts renderer-facing views from a water grid.
package frame

import "github.com/pthm-cable/slosh/fluid"

// DefaultThreshold is the level above which a cell counts as visible water.
const DefaultThreshold = 0.4

// Cell is one visible cell in a Frame.
type Cell struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Z     int     `json:"z"`
	Level float32 `json:"level"`
}

// Frame is a snapshot of the visible water at one tick.
type Frame struct {
	Tick      int32   `json:"tick"`
	W         int     `json:"w"`
	H         int     `json:"h"`
	L         int     `json:"l"`
	Threshold float32 `json:"threshold"`
	Cells     []Cell  `json:"cells"`
}

// Occupied returns the addresses of cells whose level exceeds threshold,
// in grid index order. levels must be laid out as fluid.Grid.Levels; a
// buffer whose length is not w*h*l yields nil.
func Occupied(levels []float32, w, h, l int, threshold float32) []fluid.Addr {
	if w <= 0 || h <= 0 || l <= 0 || len(levels) != w*h*l {
		return nil
	}
	var out []fluid.Addr
	i := 0
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			for z := 0; z < l; z++ {
				if levels[i] > threshold {
					out = append(out, fluid.Addr{X: x, Y: y, Z: z})
				}
				i++
			}
		}
	}
	return out
}

// Capture snapshots the visible cells of g.
func Capture(tick int32, g *fluid.Grid, threshold float32) Frame {
	w, h, l := g.Dims()
	levels := g.Levels()

	f := Frame{Tick: tick, W: w, H: h, L: l, Threshold: threshold}
	for _, a := range Occupied(levels, w, h, l, threshold) {
		f.Cells = append(f.Cells, Cell{X: a.X, Y: a.Y, Z: a.Z, Level: levels[g.Index(a)]})
	}
	return f
}

// Slice returns the x/y plane at depth z as [x][y] levels.
// Out-of-range z yields nil.
func Slice(levels []float32, w, h, l, z int) [][]float32 {
	if z < 0 || z >= l {
		return nil
	}
	out := make([][]float32, w)
	for x := 0; x < w; x++ {
		out[x] = make([]float32, h)
		for y := 0; y < h; y++ {
			out[x][y] = levels[(x*h+y)*l+z]
		}
	}
	return out
}

// ramp goes from empty to full.
var ramp = []rune(" .:-=+*#%@")

// Shade maps a level to a density glyph. Levels at or above 1 get the
// densest glyph.
func Shade(level float32) rune {
	if level <= 0 {
		return ramp[0]
	}
	if level >= 1 {
		return ramp[len(ramp)-1]
	}
	idx := int(level * float32(len(ramp)-1))
	return ramp[max(idx, 1)]
}
