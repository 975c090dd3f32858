package fluid

import (
	"gonum.org/v1/gonum/blas/blas32"
)

func (g *Grid) levelVector() blas32.Vector {
	return blas32.Vector{N: len(g.level), Inc: 1, Data: g.level}
}

// TotalMass returns the sum of all current levels, shell included.
// It sums magnitudes, which equals the plain sum only while levels are
// non-negative. Update never produces a negative level, but Set, FromField
// and FromFlat store caller values unchecked.
func (g *Grid) TotalMass() float32 {
	return blas32.Asum(g.levelVector())
}

// MaxLevel returns the fullest cell and its level. Like TotalMass it
// assumes non-negative levels.
func (g *Grid) MaxLevel() (Addr, float32) {
	i := blas32.Iamax(g.levelVector())
	if i < 0 {
		return Addr{}, 0
	}
	return g.AddrOf(i), g.level[i]
}

// KineticEnergy returns Σ ½·m·|v|² over the current generation.
func (g *Grid) KineticEnergy() float64 {
	var e float64
	for i, m := range g.level {
		if m == 0 {
			continue
		}
		v := g.vel[i]
		e += 0.5 * float64(m) * float64(v.Dot(v))
	}
	return e
}

// Speeds fills dst with |v| per cell and returns it, reusing dst when large enough.
func (g *Grid) Speeds(dst []float64) []float64 {
	if cap(dst) < len(g.vel) {
		dst = make([]float64, len(g.vel))
	}
	dst = dst[:len(g.vel)]
	for i, v := range g.vel {
		dst[i] = float64(v.Len())
	}
	return dst
}
