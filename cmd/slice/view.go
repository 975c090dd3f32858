package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/slosh/frame"
)

// view draws one z-slice of the grid, two columns per cell, y up.
type view struct {
	w, h, l int
	z       int
}

// cellStyle colours a level from dark to bright blue.
func cellStyle(level float32) tcell.Style {
	t := min(max(level, 0), 1)
	blue := int32(80 + 175*t)
	green := int32(40 + 140*t)
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(30, green, blue))
}

// shift moves the slice by d, clamped to the grid depth.
func (v *view) shift(d int) {
	v.z = min(max(v.z+d, 0), v.l-1)
}

// draw renders levels and a status line.
func (v *view) draw(s tcell.Screen, levels []float32, status string) {
	s.Clear()
	slice := frame.Slice(levels, v.w, v.h, v.l, v.z)
	for x := range slice {
		for y, level := range slice[x] {
			r := frame.Shade(level)
			st := cellStyle(level)
			row := v.h - 1 - y
			s.SetContent(2*x, row, r, nil, st)
			s.SetContent(2*x+1, row, r, nil, st)
		}
	}

	line := fmt.Sprintf("z=%d/%d  %s", v.z, v.l-1, status)
	for i, r := range line {
		s.SetContent(i, v.h+1, r, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	s.Show()
}
