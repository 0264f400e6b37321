package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"goquarium/core"
)

// Tank viewport: interior cells run 1..tankW and 1..tankH, the border
// sits just outside. tankRange is the logical distance from the tank
// center to each edge.
const (
	tankW     = 48
	tankH     = 18
	tankRange = 240
)

var axisNames = [...]string{"x", "y", "z", "theta"}

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	fishStyle   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	dimStyle    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	jellyStyle  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	ledStyle    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	alertStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	textStyle   = tcell.StyleDefault
)

func (s *Sim) set(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	s.screen.SetContent(x, y, r, nil, style)
}

// text draws an ASCII formatted string left to right.
func (s *Sim) text(x, y int, style tcell.Style, format string, args ...any) {
	for i, r := range fmt.Sprintf(format, args...) {
		s.set(x+i, y, r, style)
	}
}

// setTank draws into the tank interior only.
func (s *Sim) setTank(x, y int, r rune, style tcell.Style) {
	if x < 1 || x > tankW || y < 1 || y > tankH {
		return
	}
	s.set(x, y, r, style)
}

// cell maps a logical x/y position to a tank interior cell, clamped at
// the walls.
func cell(x, y int) (int, int) {
	cx := 1 + (x+tankRange)*(tankW-1)/(2*tankRange)
	cy := 1 + (tankRange-y)*(tankH-1)/(2*tankRange)
	if cx < 1 {
		cx = 1
	}
	if cx > tankW {
		cx = tankW
	}
	if cy < 1 {
		cy = 1
	}
	if cy > tankH {
		cy = tankH
	}
	return cx, cy
}

func fishGlyph(angle float64) rune {
	c, si := math.Cos(angle), math.Sin(angle)
	switch {
	case c >= math.Abs(si):
		return '>'
	case -c >= math.Abs(si):
		return '<'
	case si > 0:
		return '^'
	default:
		return 'v'
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (s *Sim) draw() {
	s.screen.Clear()
	s.drawTank()
	s.drawJellyfish()
	s.drawFish()
	s.drawStatus()
	s.screen.Show()
}

func (s *Sim) drawTank() {
	for x := 0; x <= tankW+1; x++ {
		s.set(x, 0, '-', borderStyle)
		s.set(x, tankH+1, '-', borderStyle)
	}
	for y := 1; y <= tankH; y++ {
		s.set(0, y, '|', borderStyle)
		s.set(tankW+1, y, '|', borderStyle)
	}
	s.set(0, 0, '+', borderStyle)
	s.set(tankW+1, 0, '+', borderStyle)
	s.set(0, tankH+1, '+', borderStyle)
	s.set(tankW+1, tankH+1, '+', borderStyle)
}

func (s *Sim) drawJellyfish() {
	jelly := core.GetJellyfish(0)
	if jelly == nil {
		return
	}
	jx := tankW - 4

	if jelly.Lowered() {
		s.setTank(jx-1, 1, '(', jellyStyle)
		s.setTank(jx, 1, 'o', jellyStyle)
		s.setTank(jx+1, 1, ')', jellyStyle)
		s.setTank(jx-1, 2, '\\', jellyStyle)
		s.setTank(jx, 2, '|', jellyStyle)
		s.setTank(jx+1, 2, '/', jellyStyle)
	} else {
		// Lifted out of the water, resting on the rim.
		s.set(jx-1, 0, '-', jellyStyle)
		s.set(jx, 0, 'o', jellyStyle)
		s.set(jx+1, 0, '-', jellyStyle)
	}

	if led := core.GetLED(0); led != nil && led.IsOn() {
		s.setTank(jx-3, 1, '*', ledStyle)
	}
}

func (s *Sim) drawFish() {
	if s.fish == nil {
		return
	}

	style := fishStyle
	if s.aq.Phase() == core.IdleDark {
		style = dimStyle
	}

	if s.fish.Active() {
		tx, ty, _ := s.fish.Target()
		mx, my := cell(tx, ty)
		s.setTank(mx, my, 'x', dimStyle)
	}

	fx, fy, _ := s.fish.Pos()
	glyph := fishGlyph(s.fish.MoveAngle())
	cx, cy := cell(fx, fy)

	tailX, tailY := cx, cy
	switch glyph {
	case '>':
		tailX--
	case '<':
		tailX++
	case '^':
		tailY++
	case 'v':
		tailY--
	}
	s.setTank(tailX, tailY, '~', style)
	s.setTank(cx, cy, glyph, style)
}

func (s *Sim) drawStatus() {
	sx := tankW + 4
	row := 1

	s.text(sx, row, textStyle.Bold(true), "AQUARIUM  %s", s.aq.Phase())
	if len(s.tapTicks) > 0 {
		s.text(sx+26, row, alertStyle.Bold(true), "TAP")
	}
	row += 2

	s.text(sx, row, textStyle, "clock %8d ms   light %s", s.aq.Clock(), onOff(s.light))
	row += 2

	fx, fy, fz := s.fish.Pos()
	tx, ty, tz := s.fish.Target()
	s.text(sx, row, textStyle, "fish  pos (%4d,%4d,%4d)", fx, fy, fz)
	row++
	s.text(sx, row, textStyle, "      tgt (%4d,%4d,%4d)", tx, ty, tz)
	row++
	s.text(sx, row, textStyle, "      speed %3d  subgoals %2d  heading %4.0f deg",
		s.fish.Speed(), s.fish.SubStepsLeft(), s.fish.MoveAngle()*180/math.Pi)
	row += 2

	s.text(sx, row, textStyle, "axis    pos    tgt  state")
	row++
	for i, name := range axisNames {
		crs := core.GetCRS(i)
		if crs == nil {
			continue
		}
		state, style := "hold", textStyle
		switch {
		case crs.Fault():
			state, style = "FAULT", alertStyle
		case !crs.Calibrated():
			state, style = "uncal", dimStyle
		case crs.Moving():
			state = "mov"
		}
		s.text(sx, row, style, "%-5s %6d %6d  %s", name, crs.Pos(), crs.Target(), state)
		row++
	}
	row++

	jelly := core.GetJellyfish(0)
	led := core.GetLED(0)
	if jelly != nil && led != nil {
		posture := "raised"
		if jelly.Lowered() {
			posture = "lowered"
		}
		s.text(sx, row, textStyle, "jellyfish %s  led %s", posture, onOff(led.IsOn()))
	}

	s.text(1, tankH+3, dimStyle, "l light   t or 1-%d tap   q quit", len(s.cfg.Piezos))
}
