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
	"image/color"
	"math"
	"time"

	"github.com/spatialmodel/julesplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DateFormat is the format of the date tick labels.
const DateFormat = "2006-01-02"

// bandAlpha is the opacity of percentile bands.
const bandAlpha = 0.3

// SeriesOptions specify how a time series is drawn.
type SeriesOptions struct {
	Color color.Color

	// Label is the legend entry for the series. No legend entry
	// is added if it is empty.
	Label string

	// Dashes is the dash pattern of the line; nil gives a solid line.
	Dashes []vg.Length

	// Width is the line width. Zero means the default width.
	Width vg.Length

	Smoothing julesplot.SmoothOptions

	// XRange, if set, fixes the extent of the x axis.
	XRange *[2]time.Time

	Title string

	// YLabel, if set, labels the y axis.
	YLabel string
}

func (o SeriesOptions) lineStyle() draw.LineStyle {
	s := plotter.DefaultLineStyle
	if o.Color != nil {
		s.Color = o.Color
	}
	if o.Width > 0 {
		s.Width = o.Width
	}
	s.Dashes = o.Dashes
	return s
}

// NewTimePlot returns a plot whose x axis shows dates.
func NewTimePlot() *plot.Plot {
	p := plot.New()
	p.X.Tick.Marker = plot.TimeTicks{Format: DateFormat}
	p.X.Label.Text = "Date"
	return p
}

// TimeSeries draws s on p after smoothing it according to
// o.Smoothing. Missing values leave gaps in the line. If the smoothing
// produces percentile bands, the area between them is shaded in a
// translucent version of the line color. If p is nil, a new plot is
// created. The plot that was drawn on is returned.
func TimeSeries(p *plot.Plot, s julesplot.Series, o SeriesOptions) (*plot.Plot, error) {
	sm, err := julesplot.Smooth(s, o.Smoothing)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = NewTimePlot()
	}
	style := o.lineStyle()

	if sm.Banded {
		for _, ring := range bands(sm.Lower, sm.Upper) {
			poly, err := plotter.NewPolygon(ring)
			if err != nil {
				return nil, err
			}
			poly.Color = withAlpha(style.Color, bandAlpha)
			poly.LineStyle.Width = 0
			p.Add(poly)
		}
	}
	for _, seg := range segments(sm.Line) {
		l, err := plotter.NewLine(seg)
		if err != nil {
			return nil, err
		}
		l.LineStyle = style
		p.Add(l)
	}
	if o.Label != "" {
		p.Legend.Add(o.Label, &plotter.Line{LineStyle: style})
	}
	if o.XRange != nil {
		setXRange(p, o.XRange[0], o.XRange[1])
	}
	if o.Title != "" {
		p.Title.Text = o.Title
	}
	if o.YLabel != "" {
		p.Y.Label.Text = o.YLabel
	}
	return p, nil
}

func setXRange(p *plot.Plot, start, end time.Time) {
	p.X.Min = unix(start)
	p.X.Max = unix(end)
}

// unix converts t to the x coordinate used by plot.TimeTicks.
func unix(t time.Time) float64 {
	return float64(t.Unix())
}

// segments splits s into runs of consecutive finite values.
func segments(s julesplot.Series) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: unix(s.Time[i]), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// bands returns one closed ring for each run of time steps where both
// lower and upper are finite, tracing lower forwards and upper
// backwards.
func bands(lower, upper julesplot.Series) []plotter.XYs {
	var out []plotter.XYs
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		ring := make(plotter.XYs, 0, 2*(end-start))
		for i := start; i < end; i++ {
			ring = append(ring, plotter.XY{X: unix(lower.Time[i]), Y: lower.Values[i]})
		}
		for i := end - 1; i >= start; i-- {
			ring = append(ring, plotter.XY{X: unix(upper.Time[i]), Y: upper.Values[i]})
		}
		out = append(out, ring)
		start = -1
	}
	for i := range lower.Values {
		if finite(lower.Values[i]) && finite(upper.Values[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(lower.Values))
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
