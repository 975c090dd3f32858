package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestViewShiftClamps(t *testing.T) {
	v := &view{w: 4, h: 4, l: 5, z: 2}

	v.shift(10)
	if v.z != 4 {
		t.Errorf("z = %d, want 4", v.z)
	}
	v.shift(-10)
	if v.z != 0 {
		t.Errorf("z = %d, want 0", v.z)
	}
}

func TestViewDrawsSliceWithYUp(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Fini()
	s.SetSize(40, 10)

	w, h, l := 3, 4, 2
	levels := make([]float32, w*h*l)
	levels[(1*h+0)*l+1] = 1 // x=1 y=0 z=1: bottom row

	v := &view{w: w, h: h, l: l, z: 1}
	v.draw(s, levels, "ok")

	r, _, _, _ := s.GetContent(2, h-1)
	if r != '@' {
		t.Errorf("cell at bottom row = %q, want '@'", r)
	}
	r, _, _, _ = s.GetContent(3, h-1)
	if r != '@' {
		t.Errorf("second column of cell = %q, want '@'", r)
	}
	r, _, _, _ = s.GetContent(2, 0)
	if r != ' ' {
		t.Errorf("top row = %q, want blank", r)
	}
	r, _, _, _ = s.GetContent(0, h+1)
	if r != 'z' {
		t.Errorf("status line starts with %q, want 'z'", r)
	}
}
