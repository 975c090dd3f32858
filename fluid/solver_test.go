package fluid

import (
	"math/rand"
	"testing"
)

func TestSolverMatchesSerialUpdate(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		workers int
	}{
		{"small grid runs inline", 8, 4},
		{"parallel planning", 20, 4},
		{"single worker", 20, 1},
		{"more workers than chunks", 17, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serial, _ := New(tt.size, tt.size, tt.size, rand.New(rand.NewSource(99)))
			parallel, _ := New(tt.size, tt.size, tt.size, rand.New(rand.NewSource(99)))

			s := NewSolver(tt.workers)
			defer s.Close()

			for step := 0; step < 6; step++ {
				serial.Update(0.016)
				s.Step(parallel, 0.016)
			}
			assertIdentical(t, serial, parallel)
		})
	}
}

func TestSolverRestartsAfterClose(t *testing.T) {
	a, _ := New(20, 20, 20, rand.New(rand.NewSource(3)))
	b, _ := New(20, 20, 20, rand.New(rand.NewSource(3)))

	s := NewSolver(3)
	s.Step(a, 0.01)
	s.Close()
	s.Step(a, 0.01)
	s.Close()
	s.Close() // idempotent

	b.Update(0.01)
	b.Update(0.01)
	assertIdentical(t, a, b)
}

func TestNewSolverDefaultsWorkers(t *testing.T) {
	s := NewSolver(0)
	if s.Workers() < 1 {
		t.Errorf("expected at least one worker, got %d", s.Workers())
	}
}

func BenchmarkSolverStep32(b *testing.B) {
	g, _ := New(32, 32, 32, rand.New(rand.NewSource(1)))
	s := NewSolver(0)
	defer s.Close()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.Step(g, 0.016)
	}
}
