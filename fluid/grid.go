// Package fluid implements the volumetric water grid: a fixed 3-D lattice of
// cells holding a water level and a velocity, advanced under gravity by
// forward advection with trilinear splatting.
package fluid

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidDims is returned when a grid would have a non-positive dimension.
	ErrInvalidDims = errors.New("fluid: grid dimensions must be positive")
	// ErrRagged is returned when an initial field is not rectangular.
	ErrRagged = errors.New("fluid: initial field is not rectangular")
	// ErrOutOfRange is returned by point reads outside the W×H×L array.
	ErrOutOfRange = errors.New("fluid: address out of range")
	// ErrNilRand is returned when New is called without a random source.
	ErrNilRand = errors.New("fluid: nil random source")
	// ErrSizeMismatch is returned when a flat buffer does not match W*H*L.
	ErrSizeMismatch = errors.New("fluid: buffer size does not match dimensions")
)

// Addr is an integer lattice address.
type Addr struct {
	X, Y, Z int
}

// Grid holds two generations of level and velocity state over a W×H×L lattice.
// Storage is flat with x outermost and z innermost, so walking the buffers in
// index order is the row-major (x, y, z) traversal the update relies on.
//
// A Grid is not safe for concurrent use.
type Grid struct {
	w, h, l int

	// Current generation (externally visible)
	level []float32
	vel   []mgl32.Vec3

	// Previous generation, only meaningful during an update
	prevLevel []float32
	prevVel   []mgl32.Vec3
}

// New creates a grid whose levels are independent uniform values in [0, 1)
// drawn from rng. Velocities start at zero.
func New(w, h, l int, rng *rand.Rand) (*Grid, error) {
	if rng == nil {
		return nil, ErrNilRand
	}
	g, err := alloc(w, h, l)
	if err != nil {
		return nil, err
	}
	for i := range g.level {
		g.level[i] = rng.Float32()
	}
	return g, nil
}

// FromField creates a grid from a dense [x][y][z] field. Dimensions come from
// the field's shape and values are copied without range checks.
func FromField(levels [][][]float32) (*Grid, error) {
	if len(levels) == 0 || len(levels[0]) == 0 || len(levels[0][0]) == 0 {
		return nil, fmt.Errorf("from field: %w", ErrInvalidDims)
	}
	w, h, l := len(levels), len(levels[0]), len(levels[0][0])
	g, err := alloc(w, h, l)
	if err != nil {
		return nil, err
	}
	for x := range levels {
		if len(levels[x]) != h {
			return nil, fmt.Errorf("from field: x=%d has %d rows, want %d: %w", x, len(levels[x]), h, ErrRagged)
		}
		for y := range levels[x] {
			if len(levels[x][y]) != l {
				return nil, fmt.Errorf("from field: (%d,%d) has %d cells, want %d: %w", x, y, len(levels[x][y]), l, ErrRagged)
			}
			copy(g.level[(x*h+y)*l:], levels[x][y])
		}
	}
	return g, nil
}

// FromFlat creates a grid from a flat buffer laid out in grid index order.
func FromFlat(w, h, l int, levels []float32) (*Grid, error) {
	g, err := alloc(w, h, l)
	if err != nil {
		return nil, err
	}
	if len(levels) != len(g.level) {
		return nil, fmt.Errorf("from flat: got %d values for %dx%dx%d: %w", len(levels), w, h, l, ErrSizeMismatch)
	}
	copy(g.level, levels)
	return g, nil
}

func alloc(w, h, l int) (*Grid, error) {
	if w <= 0 || h <= 0 || l <= 0 {
		return nil, fmt.Errorf("alloc %dx%dx%d: %w", w, h, l, ErrInvalidDims)
	}
	n := w * h * l
	return &Grid{
		w: w, h: h, l: l,
		level:     make([]float32, n),
		vel:       make([]mgl32.Vec3, n),
		prevLevel: make([]float32, n),
		prevVel:   make([]mgl32.Vec3, n),
	}, nil
}

// Dims returns the grid dimensions.
func (g *Grid) Dims() (w, h, l int) { return g.w, g.h, g.l }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.level) }

// Index maps an address to its flat buffer index. The address must be contained.
func (g *Grid) Index(a Addr) int {
	return (a.X*g.h+a.Y)*g.l + a.Z
}

// AddrOf is the inverse of Index.
func (g *Grid) AddrOf(i int) Addr {
	z := i % g.l
	i /= g.l
	return Addr{X: i / g.h, Y: i % g.h, Z: z}
}

// Contains reports whether a lies inside the raw W×H×L array.
func (g *Grid) Contains(a Addr) bool {
	return a.X >= 0 && a.X < g.w &&
		a.Y >= 0 && a.Y < g.h &&
		a.Z >= 0 && a.Z < g.l
}

// InBounds reports whether a is writable: strictly inside the outer shell.
// Index 0 and the maximum index on every axis absorb whatever is routed there.
func (g *Grid) InBounds(a Addr) bool {
	return interior(a.X, g.w) && interior(a.Y, g.h) && interior(a.Z, g.l)
}

func interior(v, n int) bool {
	return v > 0 && v < n-1
}

// Get returns the current level at a. Reads outside the W×H×L array return
// ErrOutOfRange; shell cells are readable.
func (g *Grid) Get(a Addr) (float32, error) {
	if !g.Contains(a) {
		return 0, fmt.Errorf("get %v: %w", a, ErrOutOfRange)
	}
	return g.level[g.Index(a)], nil
}

// Set writes v at a if a is writable. Writes to the shell or outside the
// array are silently dropped.
func (g *Grid) Set(a Addr, v float32) {
	if !g.InBounds(a) {
		return
	}
	g.level[g.Index(a)] = v
}

// Velocity returns the current velocity at a.
func (g *Grid) Velocity(a Addr) (mgl32.Vec3, error) {
	if !g.Contains(a) {
		return mgl32.Vec3{}, fmt.Errorf("velocity %v: %w", a, ErrOutOfRange)
	}
	return g.vel[g.Index(a)], nil
}

// Levels returns a copy of the current level buffer in grid index order.
func (g *Grid) Levels() []float32 {
	out := make([]float32, len(g.level))
	copy(out, g.level)
	return out
}

// Field returns a dense [x][y][z] copy of the current levels.
func (g *Grid) Field() [][][]float32 {
	field := make([][][]float32, g.w)
	for x := range field {
		field[x] = make([][]float32, g.h)
		for y := range field[x] {
			row := make([]float32, g.l)
			copy(row, g.level[(x*g.h+y)*g.l:])
			field[x][y] = row
		}
	}
	return field
}

// SetVelocity writes v at a if a is writable.
func (g *Grid) SetVelocity(a Addr, v mgl32.Vec3) {
	if !g.InBounds(a) {
		return
	}
	g.vel[g.Index(a)] = v
}
