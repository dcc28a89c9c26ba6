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
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spatialmodel/julesplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Stress selects the water stress curves drawn for a model run in the
// bottom panel of a flux figure.
type Stress string

const (
	// NoStress draws no water stress curves.
	NoStress Stress = ""

	// WaterPotential draws the root zone water potential at 06:00 and
	// the leaf water potential at 12:00.
	WaterPotential Stress = "wp"

	// SoilMoisture draws the soil moisture stress factor at 12:00.
	SoilMoisture Stress = "beta"

	// BothStress draws both water potential and soil moisture stress.
	BothStress Stress = "beta&wp"
)

// ParseStress parses a stress selector. "none" is accepted for NoStress.
func ParseStress(s string) (Stress, error) {
	st := Stress(strings.ToLower(strings.TrimSpace(s)))
	if st == "none" {
		return NoStress, nil
	}
	if !st.valid() {
		return "", fmt.Errorf("render: unknown stress indicator %q (want wp, beta or beta&wp): %w",
			s, julesplot.ErrInvalidArgument)
	}
	return st, nil
}

func (s Stress) valid() bool {
	switch s {
	case NoStress, WaterPotential, SoilMoisture, BothStress:
		return true
	}
	return false
}

func (s Stress) wp() bool   { return s == WaterPotential || s == BothStress }
func (s Stress) beta() bool { return s == SoilMoisture || s == BothStress }

// Times of day at which the water stress variables are sampled.
const (
	RootPotentialTime = "06:00:00"
	LeafPotentialTime = "12:00:00"
	SoilStressTime    = "12:00:00"
)

// Keys are the names of the variables plotted in a flux figure.
type Keys struct {
	// Model output.
	GPP, LatentHeat, RootPotential, LeafPotential, SoilStress string

	// Observations.
	ObsGPP, ObsLatentHeat string
}

// DefaultKeys returns the JULES output and PLUMBER2 flux variable names.
func DefaultKeys() Keys {
	return Keys{
		GPP:           "gpp_gb",
		LatentHeat:    "latent_heat",
		RootPotential: "psi_root_zone_pft",
		LeafPotential: "psi_leaf_pft",
		SoilStress:    "fsmc_gb",
		ObsGPP:        "GPP",
		ObsLatentHeat: "Qle",
	}
}

// FluxOptions configure PlotFluxData.
type FluxOptions struct {
	// Labels, Colors and Stress hold one entry for each model run.
	Labels []string
	Colors []color.Color
	Stress []Stress

	ObsLabel  string
	ObsColor  color.Color
	ObsDashes []vg.Length
	ObsWidth  vg.Length

	// LineWidth is the width of the model run lines.
	LineWidth vg.Length

	Smoothing julesplot.SmoothOptions

	// SoilMoistureRange is the displayed range of the soil moisture
	// stress axis.
	SoilMoistureRange [2]float64

	// Width and Height are the figure size.
	Width, Height vg.Length

	Keys Keys

	// Legend adds legends identifying the runs and the water
	// stress curves.
	Legend bool

	Title string
}

// DefaultFluxOptions returns options for a figure without model runs.
// Callers fill in the per-run fields.
func DefaultFluxOptions() FluxOptions {
	return FluxOptions{
		ObsLabel:          "Observations",
		ObsColor:          color.Black,
		ObsWidth:          vg.Points(1),
		LineWidth:         vg.Points(1),
		SoilMoistureRange: [2]float64{0, 1.05},
		Width:             8 * vg.Inch,
		Height:            5 * vg.Inch,
		Keys:              DefaultKeys(),
	}
}

func (o FluxOptions) check(n int) error {
	if n == 0 {
		return fmt.Errorf("render: no model runs: %w", julesplot.ErrInvalidArgument)
	}
	if len(o.Labels) != n || len(o.Colors) != n || len(o.Stress) != n {
		return fmt.Errorf("render: %d model runs but %d labels, %d colors and %d stress indicators: %w",
			n, len(o.Labels), len(o.Colors), len(o.Stress), julesplot.ErrInvalidArgument)
	}
	for _, s := range o.Stress {
		if !s.valid() {
			return fmt.Errorf("render: unknown stress indicator %q: %w", s, julesplot.ErrInvalidArgument)
		}
	}
	return nil
}

func (o FluxOptions) run(i int) SeriesOptions {
	return SeriesOptions{
		Color:     o.Colors[i],
		Width:     o.LineWidth,
		Smoothing: o.Smoothing,
	}
}

func (o FluxOptions) obs() SeriesOptions {
	return SeriesOptions{
		Color:     o.ObsColor,
		Dashes:    o.ObsDashes,
		Width:     o.ObsWidth,
		Smoothing: o.Smoothing,
	}
}

// FluxFigure is a three panel figure sharing a time axis.
type FluxFigure struct {
	// Panels holds the carbon flux, latent heat and water stress
	// plots, from top to bottom.
	Panels [3]*plot.Plot

	Title         string
	Width, Height vg.Length
}

// figureDPI is the resolution of saved images.
const figureDPI = 150

// PlotFluxData creates a figure comparing model runs with observations.
// The top panel shows daily total gross primary productivity, the middle
// panel daily mean latent heat, and the bottom panel the water stress
// curves selected for each run by o.Stress. obs may be nil.
//
// When the bottom panel shows both water potential and soil moisture
// stress, soil moisture stress is drawn against a second axis on the
// right, scaled so that zero water potential lines up with a stress
// factor of one and the lowest water potential lines up with the
// bottom of o.SoilMoistureRange.
func PlotFluxData(runs []*julesplot.Dataset, obs *julesplot.Dataset, o FluxOptions) (*FluxFigure, error) {
	if err := o.check(len(runs)); err != nil {
		return nil, err
	}
	var anyWP, anyBeta bool
	for _, s := range o.Stress {
		anyWP = anyWP || s.wp()
		anyBeta = anyBeta || s.beta()
	}
	if o.Legend && !anyWP && !anyBeta {
		return nil, fmt.Errorf("render: legend requested but no run selects beta or wp: %w", julesplot.ErrConfiguration)
	}
	twin := anyWP && anyBeta
	bMin, bMax := o.SoilMoistureRange[0], o.SoilMoistureRange[1]
	if anyBeta && !(bMax > bMin) {
		return nil, fmt.Errorf("render: invalid soil moisture range %v: %w", o.SoilMoistureRange, julesplot.ErrConfiguration)
	}
	if twin && bMin >= 1 {
		return nil, fmt.Errorf("render: soil moisture range must start below 1 to align with water potential, have %g: %w",
			bMin, julesplot.ErrConfiguration)
	}

	f := &FluxFigure{Title: o.Title, Width: o.Width, Height: o.Height}
	for i := range f.Panels {
		f.Panels[i] = NewTimePlot()
	}
	gpp, le, stress := f.Panels[0], f.Panels[1], f.Panels[2]
	gpp.Y.Label.Text = "GPP (g C m-2 day-1)"
	le.Y.Label.Text = "Latent heat (W m-2)"
	if anyWP {
		stress.Y.Label.Text = "Water potential (MPa)"
	} else {
		stress.Y.Label.Text = "Soil moisture stress (-)"
	}

	for i, run := range runs {
		so := o.run(i)
		if o.Legend {
			so.Label = o.Labels[i]
		}
		s, err := julesplot.DailySeries(run, o.Keys.GPP, julesplot.Total, julesplot.NormalizeModelCarbon)
		if err != nil {
			return nil, fmt.Errorf("render: run %q: %w", o.Labels[i], err)
		}
		if _, err = TimeSeries(gpp, s, so); err != nil {
			return nil, err
		}
		so.Label = ""
		if s, err = julesplot.DailySeries(run, o.Keys.LatentHeat, julesplot.Mean, nil); err != nil {
			return nil, fmt.Errorf("render: run %q: %w", o.Labels[i], err)
		}
		if _, err = TimeSeries(le, s, so); err != nil {
			return nil, err
		}
	}
	if obs != nil {
		so := o.obs()
		if o.Legend {
			so.Label = o.ObsLabel
		}
		s, err := julesplot.DailySeries(obs, o.Keys.ObsGPP, julesplot.Total, julesplot.NormalizeObservedCarbon)
		if err != nil {
			return nil, fmt.Errorf("render: observations: %w", err)
		}
		if _, err = TimeSeries(gpp, s, so); err != nil {
			return nil, err
		}
		so.Label = ""
		if s, err = julesplot.DailySeries(obs, o.Keys.ObsLatentHeat, julesplot.Mean, nil); err != nil {
			return nil, fmt.Errorf("render: observations: %w", err)
		}
		if _, err = TimeSeries(le, s, so); err != nil {
			return nil, err
		}
	}

	if err := o.plotStress(stress, runs, twin); err != nil {
		return nil, err
	}
	if anyBeta && !anyWP {
		stress.Y.Min, stress.Y.Max = bMin, bMax
	}

	// Only the bottom panel labels the shared x axis.
	for _, p := range f.Panels[:2] {
		p.X.Label.Text = ""
		p.X.Tick.Marker = unlabelled{p.X.Tick.Marker}
	}
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, p := range f.Panels {
		xmin = math.Min(xmin, p.X.Min)
		xmax = math.Max(xmax, p.X.Max)
	}
	for _, p := range f.Panels {
		p.X.Min, p.X.Max = xmin, xmax
	}
	return f, nil
}

type curve struct {
	s julesplot.Series
	o SeriesOptions
}

// plotStress draws the water stress curves on p.
func (o FluxOptions) plotStress(p *plot.Plot, runs []*julesplot.Dataset, twin bool) error {
	var wp, beta []curve
	for i, run := range runs {
		st := o.Stress[i]
		so := o.run(i)
		if st.wp() {
			root, err := julesplot.ClockSeries(run, o.Keys.RootPotential, RootPotentialTime)
			if err != nil {
				return fmt.Errorf("render: run %q: %w", o.Labels[i], err)
			}
			leaf, err := julesplot.ClockSeries(run, o.Keys.LeafPotential, LeafPotentialTime)
			if err != nil {
				return fmt.Errorf("render: run %q: %w", o.Labels[i], err)
			}
			so.Dashes = Dotted
			wp = append(wp, curve{s: root, o: so})
			so.Dashes = Solid
			wp = append(wp, curve{s: leaf, o: so})
		}
		if st.beta() {
			b, err := julesplot.ClockSeries(run, o.Keys.SoilStress, SoilStressTime)
			if err != nil {
				return fmt.Errorf("render: run %q: %w", o.Labels[i], err)
			}
			so.Dashes = Dashed
			beta = append(beta, curve{s: b, o: so})
		}
	}

	var fromBeta func(float64) float64
	if twin {
		wMin := math.Inf(1)
		for _, c := range wp {
			for _, v := range c.s.Values {
				if finite(v) {
					wMin = math.Min(wMin, v)
				}
			}
		}
		if !(wMin < 0) {
			// No negative water potentials to scale against.
			wMin = -1
		}
		var toBeta func(float64) float64
		toBeta, fromBeta = twinMapping(wMin, o.SoilMoistureRange[0])
		for i, c := range beta {
			s := c.s.Copy()
			for j, v := range s.Values {
				s.Values[j] = fromBeta(v)
			}
			beta[i].s = s
		}
		p.Add(twinAxis{label: "Soil moisture stress (-)", toTwin: toBeta, fromTwin: fromBeta})
	}

	for _, c := range append(wp, beta...) {
		if _, err := TimeSeries(p, c.s, c.o); err != nil {
			return err
		}
	}

	if twin {
		p.Y.Max = math.Max(p.Y.Max, fromBeta(o.SoilMoistureRange[1]))
		p.Y.Min = math.Min(p.Y.Min, fromBeta(o.SoilMoistureRange[0]))
	}

	if o.Legend {
		key := func(name string, dashes []vg.Length) {
			s := plotter.DefaultLineStyle
			s.Color = color.Black
			s.Dashes = dashes
			p.Legend.Add(name, &plotter.Line{LineStyle: s})
		}
		if len(wp) > 0 {
			key("Root zone ψ ("+RootPotentialTime[:5]+")", Dotted)
			key("Leaf ψ ("+LeafPotentialTime[:5]+")", Solid)
		}
		if len(beta) > 0 {
			key("β ("+SoilStressTime[:5]+")", Dashed)
		}
	}
	return nil
}

// unlabelled places tick marks without labels.
type unlabelled struct {
	plot.Ticker
}

func (u unlabelled) Ticks(min, max float64) []plot.Tick {
	t := u.Ticker.Ticks(min, max)
	o := make([]plot.Tick, 0, len(t))
	for _, tt := range t {
		if !tt.IsMinor() {
			o = append(o, plot.Tick{Value: tt.Value})
		}
	}
	return o
}

// SetXRange restricts all panels to the period between start and end.
// The plotted data are not changed.
func (f *FluxFigure) SetXRange(start, end time.Time) {
	for _, p := range f.Panels {
		setXRange(p, start, end)
	}
}

// XRange returns the period shown by the figure.
func (f *FluxFigure) XRange() (start, end time.Time) {
	p := f.Panels[0]
	return time.Unix(int64(p.X.Min), 0).UTC(), time.Unix(int64(p.X.Max), 0).UTC()
}

// Draw draws the figure on c.
func (f *FluxFigure) Draw(c draw.Canvas) {
	c.SetColor(color.White)
	c.Fill(c.Rectangle.Path())
	if f.Title != "" {
		sty := f.Panels[0].Title.TextStyle
		c.FillText(sty, vg.Point{X: c.Center().X, Y: c.Max.Y}, f.Title)
		c.Max.Y -= sty.Height(f.Title) + vg.Millimeter
	}
	tiles := draw.Tiles{
		Rows:      len(f.Panels),
		Cols:      1,
		PadTop:    vg.Millimeter,
		PadBottom: vg.Millimeter,
		PadLeft:   vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	plots := make([][]*plot.Plot, len(f.Panels))
	for i, p := range f.Panels {
		plots[i] = []*plot.Plot{p}
	}
	canvases := plot.Align(plots, tiles, c)
	for i, p := range f.Panels {
		p.Draw(canvases[i][0])
	}
}

// Save writes the figure to path. The image format is chosen by the
// file extension; PNG is the usual choice.
func (f *FluxFigure) Save(path string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	var c vg.CanvasWriterTo
	if ext == "png" {
		c = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(f.Width, f.Height), vgimg.UseDPI(figureDPI))}
	} else {
		var err error
		if c, err = draw.NewFormattedCanvas(f.Width, f.Height, ext); err != nil {
			return fmt.Errorf("render: saving %s: %v", path, err)
		}
	}
	f.Draw(draw.New(c))

	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: saving figure: %v", err)
	}
	if _, err = c.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("render: writing %s: %v", path, err)
	}
	return w.Close()
}
