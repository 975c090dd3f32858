package sim

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/slosh/config"
	"github.com/pthm-cable/slosh/fluid"
	"github.com/pthm-cable/slosh/telemetry"
)

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newRunner(t *testing.T, yaml string, opts Options) *Runner {
	t.Helper()
	r, err := New(loadConfig(t, yaml), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

const smallGrid = `
grid: {width: 8, height: 8, depth: 8}
sources: []
drains: []
`

func TestInitModes(t *testing.T) {
	tests := []struct {
		mode string
		want float32
	}{
		{config.InitEmpty, 0},
		{config.InitPool, 6 * 2 * 6 * 0.5},
		{config.InitColumn, 6 * 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			r := newRunner(t, smallGrid+"init: {mode: "+tt.mode+", pool_depth: 2, pool_level: 0.5}\n", Options{})
			if got := r.Grid().TotalMass(); got != tt.want {
				t.Errorf("initial mass = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestPoolFillsFloorLayers(t *testing.T) {
	r := newRunner(t, smallGrid+"init: {mode: pool, pool_depth: 2, pool_level: 1}\n", Options{})
	for y := 0; y < 8; y++ {
		v, _ := r.Grid().Get(fluid.Addr{X: 3, Y: y, Z: 3})
		want := float32(0)
		if y == 1 || y == 2 {
			want = 1
		}
		if v != want {
			t.Errorf("level at y=%d = %f, want %f", y, v, want)
		}
	}
}

func TestRandomInitIsSeeded(t *testing.T) {
	a := newRunner(t, smallGrid, Options{Seed: 77})
	b := newRunner(t, smallGrid, Options{Seed: 77})
	c := newRunner(t, smallGrid, Options{Seed: 78})

	la, lb, lc := a.Grid().Levels(), b.Grid().Levels(), c.Grid().Levels()
	same := true
	for i := range la {
		if la[i] != lb[i] {
			t.Fatalf("same seed differs at %d", i)
		}
		if la[i] != lc[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical grids")
	}
}

func TestNoiseInitIsSeededAndShellFree(t *testing.T) {
	yaml := smallGrid + "init: {mode: noise, noise_scale: 0.3, pool_level: 1}\n"
	a := newRunner(t, yaml, Options{Seed: 5})
	b := newRunner(t, yaml, Options{Seed: 5})

	la, lb := a.Grid().Levels(), b.Grid().Levels()
	for i := range la {
		if la[i] != lb[i] {
			t.Fatalf("same seed differs at %d", i)
		}
		if la[i] < 0 || la[i] > 1 {
			t.Fatalf("level[%d] = %f outside [0,1]", i, la[i])
		}
		if !a.Grid().InBounds(a.Grid().AddrOf(i)) && la[i] != 0 {
			t.Fatalf("shell cell %v has level %f", a.Grid().AddrOf(i), la[i])
		}
	}
	if a.Grid().TotalMass() == 0 {
		t.Error("expected noise to place some water")
	}
}

func TestStepBalancesMass(t *testing.T) {
	yaml := `
grid: {width: 10, height: 10, depth: 10}
physics: {dt: 0.016, workers: 2}
telemetry: {stats_window: 0.16}
sources:
  - {x: 5, y: 7, z: 5, rate: 20, budget: 0}
drains:
  - {x: 2, y: 1, z: 2, rate: 5}
`
	var windows []telemetry.WindowStats
	r := newRunner(t, yaml, Options{
		Seed:          3,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	initial := float64(r.Grid().TotalMass())
	for i := 0; i < 30; i++ {
		r.Step()
	}
	if r.Tick() != 30 {
		t.Fatalf("tick = %d, want 30", r.Tick())
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}

	var injected, drained, lost float64
	for _, w := range windows {
		injected += w.Injected
		drained += w.Drained
		lost += w.BoundaryLoss
	}
	final := float64(r.Grid().TotalMass())
	if math.Abs(initial+injected-drained-lost-final) > 1e-3*initial {
		t.Errorf("mass does not balance: %f + %f - %f - %f != %f", initial, injected, drained, lost, final)
	}
	if injected <= 0 {
		t.Error("expected the source to inject water")
	}
	if lost <= 0 {
		t.Error("expected the shell to absorb water from a random start")
	}
	if r.LastStats().WindowEndTick != 30 {
		t.Errorf("last stats window end = %d", r.LastStats().WindowEndTick)
	}
}

func TestOutputDirWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r, err := New(loadConfig(t, smallGrid+"telemetry: {stats_window: 0.032}\n"), Options{Seed: 1, OutputDir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 4; i++ {
		r.Step()
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("reading stats.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header + 2 rows, got %d lines", len(lines))
	}
	for _, name := range []string{"perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestPour(t *testing.T) {
	r := newRunner(t, smallGrid+"init: {mode: empty}\n", Options{})

	if !r.Pour(4, 4, 2) {
		t.Fatal("expected pour into interior column to succeed")
	}
	if v, _ := r.Grid().Get(fluid.Addr{X: 4, Y: 6, Z: 4}); v != 2 {
		t.Errorf("level at top interior cell = %f, want 2", v)
	}
	if r.Pour(0, 4, 2) {
		t.Error("expected pour on the shell to fail")
	}
	if r.Pour(4, 4, 0) {
		t.Error("expected zero pour to fail")
	}
	if m := r.Grid().TotalMass(); m != 2 {
		t.Errorf("total = %f, want 2", m)
	}
}

func TestResetRestartsDeterministically(t *testing.T) {
	r := newRunner(t, smallGrid, Options{Seed: 9})
	start := r.Grid().Levels()

	for i := 0; i < 5; i++ {
		r.Step()
	}
	if err := r.Reset(9); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if r.Tick() != 0 {
		t.Errorf("tick after reset = %d", r.Tick())
	}
	for i, v := range r.Grid().Levels() {
		if v != start[i] {
			t.Fatalf("level[%d] = %f after reset, want %f", i, v, start[i])
		}
	}
}

func TestFrameUsesThreshold(t *testing.T) {
	r := newRunner(t, smallGrid+"init: {mode: column, pool_level: 0.6}\n", Options{})

	if n := len(r.Frame(0.5).Cells); n != 6 {
		t.Errorf("frame at 0.5 has %d cells, want 6", n)
	}
	if n := len(r.Frame(0.7).Cells); n != 0 {
		t.Errorf("frame at 0.7 has %d cells, want 0", n)
	}
}

func TestSetDTClampsNegative(t *testing.T) {
	r := newRunner(t, smallGrid, Options{})
	r.SetDT(-1)
	if r.DT() != 0 {
		t.Errorf("DT = %f, want 0", r.DT())
	}
	r.SetDT(0.02)
	if r.DT() != 0.02 {
		t.Errorf("DT = %f, want 0.02", r.DT())
	}
}
