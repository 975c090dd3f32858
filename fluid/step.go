package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Gravity is the constant acceleration applied to every cell, in cells/s².
var Gravity = mgl32.Vec3{0, -9.8, 0}

// splat is the resolved contribution of one source cell: up to eight target
// indices with their trilinear weights. A corner index of -1 is a shell or
// out-of-range target and is skipped on apply.
type splat struct {
	corners [8]int
	weights [8]float32
	amount  float32
	vel     mgl32.Vec3
}

// Update advances the grid by dt seconds.
//
// The current generation is archived as previous and the current buffers are
// zeroed. Each source cell then receives gravity and is forward-advected onto
// the current generation in row-major (x, y, z) order.
func (g *Grid) Update(dt float32) {
	g.swap()
	impulse := Gravity.Mul(dt)

	var s splat
	for i := range g.prevLevel {
		g.plan(i, impulse, &s)
		g.apply(&s)
	}
}

// swap exchanges generations and clears the buffers that become current.
func (g *Grid) swap() {
	g.level, g.prevLevel = g.prevLevel, g.level
	g.vel, g.prevVel = g.prevVel, g.vel
	clear(g.level)
	clear(g.vel)
}

// plan resolves source cell i of the previous generation into s.
// It only reads the previous generation, so it may run concurrently for
// different source cells.
func (g *Grid) plan(i int, impulse mgl32.Vec3, s *splat) {
	a := g.AddrOf(i)
	oldVel := g.prevVel[i]
	impulseVel := oldVel.Add(impulse)

	// First displacement: the cell moves by its old velocity. The splat
	// displaces again by impulseVel, so the net target is
	// (x,y,z) + oldVel + impulseVel.
	pos := mgl32.Vec3{float32(a.X), float32(a.Y), float32(a.Z)}.Add(oldVel)
	g.resolve(pos, g.prevLevel[i], impulseVel, s)
}

// resolve computes the corners and weights for splatting amount at pos+vel.
func (g *Grid) resolve(pos mgl32.Vec3, amount float32, vel mgl32.Vec3, s *splat) {
	s.amount = amount
	s.vel = vel

	// Second displacement, owned by the splat operator.
	pos = pos.Add(vel)

	var lo [3]float32
	dims := [3]int{g.w, g.h, g.l}
	for k := 0; k < 3; k++ {
		f := math.Floor(float64(pos[k]))
		// Anything flooring outside [-1, dim] has no writable corner; this
		// also rejects NaN and ±Inf before the int conversion below.
		if !(f >= -1 && f <= float64(dims[k])) {
			for c := range s.corners {
				s.corners[c] = -1
				s.weights[c] = 0
			}
			return
		}
		lo[k] = float32(f)
	}

	s.weights = trilinear(pos, lo)
	for c := range s.corners {
		addr := cornerAddr(c, lo)
		if g.InBounds(addr) {
			s.corners[c] = g.Index(addr)
		} else {
			s.corners[c] = -1
		}
	}
}

// apply accumulates a resolved splat into the current generation, corner by
// corner in order.
func (g *Grid) apply(s *splat) {
	for c, idx := range s.corners {
		if idx < 0 {
			continue
		}
		g.accumulate(idx, s.amount*s.weights[c], s.vel)
	}
}

// accumulate merges value and vel into cell idx. The velocity becomes the
// mass-weighted average of the existing and incoming velocities. When both
// masses are zero the existing velocity is kept.
func (g *Grid) accumulate(idx int, value float32, vel mgl32.Vec3) {
	old := g.level[idx]
	total := old + value
	if total != 0 {
		g.vel[idx] = g.vel[idx].Mul(old).Add(vel.Mul(value)).Mul(1 / total)
	}
	g.level[idx] = total
}

// Splat distributes amount carried with vel from pos onto the current
// generation, exactly as Update does for each source cell. Note that pos is
// displaced by vel before the corners are resolved.
func (g *Grid) Splat(pos mgl32.Vec3, amount float32, vel mgl32.Vec3) {
	var s splat
	g.resolve(pos, amount, vel, &s)
	g.apply(&s)
}

// Accumulate merges value and vel into the cell at a. Shell and out-of-range
// addresses are a no-op.
func (g *Grid) Accumulate(a Addr, value float32, vel mgl32.Vec3) {
	if !g.InBounds(a) {
		return
	}
	g.accumulate(g.Index(a), value, vel)
}

// Weights returns the eight trilinear weights for a position, in corner order.
func Weights(pos mgl32.Vec3) [8]float32 {
	var lo [3]float32
	for k := 0; k < 3; k++ {
		lo[k] = float32(math.Floor(float64(pos[k])))
	}
	return trilinear(pos, lo)
}

// Corner c is encoded as bits: 4 = down (y lo), 2 = back (z lo), 1 = left (x lo).
// Counting c from 0 to 7 therefore yields up/down × front/back × right/left
// with y outermost.
func cornerOffset(c int) (dx, dy, dz float32) {
	dx, dy, dz = 1, 1, 1
	if c&1 != 0 {
		dx = 0
	}
	if c&4 != 0 {
		dy = 0
	}
	if c&2 != 0 {
		dz = 0
	}
	return dx, dy, dz
}

// cornerAddr uses lo+1 for every upper corner instead of ceil(pos). On an
// integer coordinate the upper corners are distinct cells with weight 0
// rather than duplicates of the lower ones, so they receive no mass; their
// zero-mass merge keeps an empty cell's velocity and can only rescale an
// occupied cell's velocity by float rounding.
func cornerAddr(c int, lo [3]float32) Addr {
	dx, dy, dz := cornerOffset(c)
	return Addr{X: int(lo[0] + dx), Y: int(lo[1] + dy), Z: int(lo[2] + dz)}
}

// trilinear weighs each corner by the volume of the box between pos and the
// diagonally opposite corner.
func trilinear(pos mgl32.Vec3, lo [3]float32) [8]float32 {
	var w [8]float32
	for c := range w {
		dx, dy, dz := cornerOffset(c)
		opposite := mgl32.Vec3{lo[0] + 1 - dx, lo[1] + 1 - dy, lo[2] + 1 - dz}
		d := opposite.Sub(pos)
		w[c] = abs32(d[0] * d[1] * d[2])
	}
	return w
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
