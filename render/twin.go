/*
Copyright © 2024 the julesplot authors.
This file is part of julesplot.

julesplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

julesplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with julesplot.  If not, see <http://www.gnu.org/licenses/>.
*/

package render

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// twinMapping returns the linear mapping between water potential and
// soil moisture stress in which zero water potential corresponds to a
// stress factor of one and wMin corresponds to bMin.
func twinMapping(wMin, bMin float64) (toBeta, fromBeta func(float64) float64) {
	scale := (1 - bMin) / (0 - wMin)
	toBeta = func(wp float64) float64 { return 1 + wp*scale }
	fromBeta = func(beta float64) float64 { return (beta - 1) / scale }
	return toBeta, fromBeta
}

// twinAxis draws a second vertical axis along the right edge of the
// data area. Its values are a linear function of the values on the
// plot's own y axis.
type twinAxis struct {
	label            string
	toTwin, fromTwin func(float64) float64
}

const twinTickPad = 2 * vg.Millimeter

func (a twinAxis) ticks(p *plot.Plot) []plot.Tick {
	lo, hi := a.toTwin(p.Y.Min), a.toTwin(p.Y.Max)
	if !(hi > lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	var o []plot.Tick
	for _, t := range (plot.DefaultTicks{}).Ticks(lo, hi) {
		if t.Value >= lo && t.Value <= hi {
			o = append(o, t)
		}
	}
	return o
}

func (a twinAxis) labelStyle(p *plot.Plot) draw.TextStyle {
	s := p.Y.Label.TextStyle
	s.Rotation = math.Pi / 2
	s.XAlign = draw.XCenter
	s.YAlign = draw.YBottom
	return s
}

func (a twinAxis) tickStyle(p *plot.Plot) draw.TextStyle {
	s := p.Y.Tick.Label
	s.XAlign = draw.XLeft
	s.YAlign = draw.YCenter
	return s
}

// width is the horizontal space the axis takes up outside the data area.
func (a twinAxis) width(p *plot.Plot) vg.Length {
	w := p.Y.Tick.Length + twinTickPad
	ts := a.tickStyle(p)
	var lw vg.Length
	for _, t := range a.ticks(p) {
		if l := ts.Width(t.Label); l > lw {
			lw = l
		}
	}
	w += lw
	if a.label != "" {
		w += p.Y.Label.Padding + a.labelStyle(p).Height(a.label)
	}
	return w
}

// Plot implements the plot.Plotter interface.
func (a twinAxis) Plot(c draw.Canvas, p *plot.Plot) {
	x := c.Max.X
	c.StrokeLine2(p.Y.LineStyle, x, c.Min.Y, x, c.Max.Y)
	ts := a.tickStyle(p)
	for _, t := range a.ticks(p) {
		y := c.Y(p.Y.Norm(a.fromTwin(t.Value)))
		l := p.Y.Tick.Length
		if t.IsMinor() {
			l /= 2
		}
		c.StrokeLine2(p.Y.Tick.LineStyle, x, y, x+l, y)
		if !t.IsMinor() {
			c.FillText(ts, vg.Point{X: x + p.Y.Tick.Length + twinTickPad, Y: y}, t.Label)
		}
	}
	if a.label != "" {
		c.FillText(a.labelStyle(p), vg.Point{X: x + a.width(p), Y: c.Center().Y}, a.label)
	}
}

// GlyphBoxes implements the plot.GlyphBoxer interface, reserving room
// for the axis to the right of the data area.
func (a twinAxis) GlyphBoxes(p *plot.Plot) []plot.GlyphBox {
	return []plot.GlyphBox{{
		X: 1, Y: 0.5,
		Rectangle: vg.Rectangle{Max: vg.Point{X: a.width(p)}},
	}}
}
