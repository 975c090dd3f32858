package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/slosh/config"
)

func TestNilOutputManagerDiscards(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager and no error, got %v, %v", om, err)
	}
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("WriteStats on nil: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Errorf("WritePerf on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil = %q", om.Dir())
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	for tick := int32(10); tick <= 30; tick += 10 {
		if err := om.WriteStats(WindowStats{WindowEndTick: tick, TotalMass: 1}); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
	}
	perf := PerfStats{AvgTickDuration: time.Millisecond, PhasePct: map[string]float64{PhaseAdvection: 80}}
	if err := om.WritePerf(perf, 30); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("reading stats.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,total_mass") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Contains(lines[2], "window_end") {
		t.Error("header repeated")
	}

	perfData, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if !strings.Contains(string(perfData), "advection_pct") {
		t.Errorf("perf.csv missing advection_pct header:\n%s", perfData)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}
