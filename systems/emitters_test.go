package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/slosh/fluid"
)

func emptyGrid(t *testing.T, n int) *fluid.Grid {
	t.Helper()
	g, err := fluid.FromFlat(n, n, n, make([]float32, n*n*n))
	if err != nil {
		t.Fatalf("FromFlat: %v", err)
	}
	return g
}

func TestSourceInjectsRateTimesDT(t *testing.T) {
	g := emptyGrid(t, 5)
	e := NewEmitters()
	e.AddSource(fluid.Addr{X: 2, Y: 2, Z: 2}, 10, 0)

	injected, drained := e.Apply(g, 0.1)

	if math.Abs(injected-1) > 1e-6 || drained != 0 {
		t.Errorf("injected %f drained %f, want 1 and 0", injected, drained)
	}
	if v, _ := g.Get(fluid.Addr{X: 2, Y: 2, Z: 2}); math.Abs(float64(v)-1) > 1e-6 {
		t.Errorf("level = %f, want 1", v)
	}
}

func TestSourceBudgetRunsDry(t *testing.T) {
	g := emptyGrid(t, 5)
	e := NewEmitters()
	e.AddSource(fluid.Addr{X: 1, Y: 1, Z: 1}, 10, 1.5)

	var total float64
	for i := 0; i < 5; i++ {
		in, _ := e.Apply(g, 0.1)
		total += in
	}

	if math.Abs(total-1.5) > 1e-5 {
		t.Errorf("total injected %f, want budget 1.5", total)
	}
	if e.NumSources() != 0 {
		t.Errorf("expected exhausted source removed, %d remain", e.NumSources())
	}
	if len(e.Sources()) != 0 {
		t.Errorf("Sources() still lists %d cells", len(e.Sources()))
	}
}

func TestShellEmittersDoNothing(t *testing.T) {
	g := emptyGrid(t, 4)
	e := NewEmitters()
	e.AddSource(fluid.Addr{X: 0, Y: 1, Z: 1}, 10, 0)
	e.AddDrain(fluid.Addr{X: 3, Y: 1, Z: 1}, 10)

	in, out := e.Apply(g, 1)

	if in != 0 || out != 0 {
		t.Errorf("shell emitters moved water: in %f out %f", in, out)
	}
	if g.TotalMass() != 0 {
		t.Errorf("total = %f, want 0", g.TotalMass())
	}
}

func TestDrainNeverGoesNegative(t *testing.T) {
	g := emptyGrid(t, 5)
	a := fluid.Addr{X: 2, Y: 1, Z: 2}
	g.Set(a, 0.3)

	e := NewEmitters()
	e.AddDrain(a, 10)

	_, drained := e.Apply(g, 1)

	if math.Abs(drained-0.3) > 1e-6 {
		t.Errorf("drained %f, want 0.3", drained)
	}
	if v, _ := g.Get(a); v != 0 {
		t.Errorf("level = %f, want 0", v)
	}

	_, drained = e.Apply(g, 1)
	if drained != 0 {
		t.Errorf("empty cell drained %f", drained)
	}
}

func TestSourcesAndDrainsListed(t *testing.T) {
	e := NewEmitters()
	e.AddSource(fluid.Addr{X: 1, Y: 2, Z: 3}, 1, 0)
	e.AddSource(fluid.Addr{X: 2, Y: 2, Z: 2}, 1, 0)
	e.AddDrain(fluid.Addr{X: 3, Y: 1, Z: 1}, 1)

	if got := len(e.Sources()); got != 2 {
		t.Errorf("Sources() len = %d, want 2", got)
	}
	drains := e.Drains()
	if len(drains) != 1 || drains[0] != (fluid.Addr{X: 3, Y: 1, Z: 1}) {
		t.Errorf("Drains() = %v", drains)
	}
	if e.NumSources() != 2 || e.NumDrains() != 1 {
		t.Errorf("counts = %d sources %d drains", e.NumSources(), e.NumDrains())
	}
}
