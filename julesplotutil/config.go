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

package julesplotutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/julesplot"
	"github.com/spatialmodel/julesplot/render"
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
)

// expandPath expands the environment variables in a file or folder path.
func expandPath(p string) string {
	return os.ExpandEnv(p)
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`julesplot: you need to specify an output file configuration variable (for example: OutputFile="site.png"): %w`,
			julesplot.ErrConfiguration)
	}
	f = expandPath(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("julesplot: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkInputDir makes sure that the folder given by configuration
// variable name exists, and expands any environment variables.
func checkInputDir(d, name string) (string, error) {
	if d == "" {
		return "", fmt.Errorf("julesplot: you need to specify the %s configuration variable: %w",
			name, julesplot.ErrConfiguration)
	}
	d = expandPath(d)
	fi, err := os.Stat(d)
	if err != nil {
		return d, fmt.Errorf("julesplot: %s: %v", name, err)
	}
	if !fi.IsDir() {
		return d, fmt.Errorf("julesplot: %s: %s is not a folder: %w", name, d, julesplot.ErrConfiguration)
	}
	return d, nil
}

// checkPFT returns the function that reduces the plant functional
// type dimension, or nil if it should be kept.
func checkPFT(s string) (julesplot.Converter, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return nil, nil
	case "mean":
		return julesplot.MeanPFT, nil
	case "sum", "total":
		return julesplot.SumPFT, nil
	default:
		return nil, fmt.Errorf("julesplot: PFT must be one of none, mean or sum but is %q: %w",
			s, julesplot.ErrConfiguration)
	}
}

// toFloat64SliceE converts a list of numbers from a configuration file,
// a command line argument, or a JSON array to a float slice.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case []string:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(strings.TrimSpace(val))
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case string:
		var o []float64
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid type for a list of numbers: %#v", s)
	}
}

// pair reads a two-element list of numbers from cfg. ok is false if
// the list is empty.
func pair(cfg *viper.Viper, name string) (p [2]float64, ok bool, err error) {
	v, err := toFloat64SliceE(cfg.Get(name))
	if err != nil {
		return p, false, fmt.Errorf("julesplot: %s: %v: %w", name, err, julesplot.ErrConfiguration)
	}
	switch len(v) {
	case 0:
		return p, false, nil
	case 2:
		return [2]float64{v[0], v[1]}, true, nil
	default:
		return p, false, fmt.Errorf("julesplot: %s must have two values but has %d: %w",
			name, len(v), julesplot.ErrConfiguration)
	}
}

// fluxOptions unmarshals a viper configuration for a flux figure.
func fluxOptions(cfg *viper.Viper) (render.FluxOptions, error) {
	o := render.DefaultFluxOptions()
	var err error

	o.Labels = cfg.GetStringSlice("Labels")
	if o.Colors, err = render.ParseColors(cfg.GetStringSlice("Colors")); err != nil {
		return o, fmt.Errorf("julesplot: Colors: %w", err)
	}
	for _, s := range cfg.GetStringSlice("Stress") {
		st, err := render.ParseStress(s)
		if err != nil {
			return o, fmt.Errorf("julesplot: Stress: %w", err)
		}
		o.Stress = append(o.Stress, st)
	}
	o.Title = cfg.GetString("Title")
	o.Legend = cfg.GetBool("Legend")

	o.ObsLabel = cfg.GetString("ObsLabel")
	if o.ObsColor, err = render.ParseColor(cfg.GetString("ObsColor")); err != nil {
		return o, fmt.Errorf("julesplot: ObsColor: %w", err)
	}
	if o.ObsDashes, err = render.ParseLineStyle(cfg.GetString("ObsLineStyle")); err != nil {
		return o, fmt.Errorf("julesplot: ObsLineStyle: %w", err)
	}
	o.ObsWidth = vg.Points(cfg.GetFloat64("ObsLineWidth"))
	o.LineWidth = vg.Points(cfg.GetFloat64("LineWidth"))

	if o.Smoothing.Mode, err = julesplot.ParseSmoothMode(cfg.GetString("Smoothing.Mode")); err != nil {
		return o, fmt.Errorf("julesplot: Smoothing.Mode: %w", err)
	}
	o.Smoothing.Window = cfg.GetInt("Smoothing.Window")
	pct, ok, err := pair(cfg, "Smoothing.Percentiles")
	if err != nil {
		return o, err
	}
	if ok {
		o.Smoothing.Percentiles = &pct
	}
	sm, ok, err := pair(cfg, "SoilMoistureRange")
	if err != nil {
		return o, err
	}
	if ok {
		o.SoilMoistureRange = sm
	}

	w, h := cfg.GetFloat64("FigureWidth"), cfg.GetFloat64("FigureHeight")
	if !(w > 0) || !(h > 0) {
		return o, fmt.Errorf("julesplot: FigureWidth=%g and FigureHeight=%g but should be >0: %w",
			w, h, julesplot.ErrConfiguration)
	}
	o.Width, o.Height = vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch

	o.Keys = render.Keys{
		GPP:           cfg.GetString("Keys.GPP"),
		LatentHeat:    cfg.GetString("Keys.LatentHeat"),
		RootPotential: cfg.GetString("Keys.RootPotential"),
		LeafPotential: cfg.GetString("Keys.LeafPotential"),
		SoilStress:    cfg.GetString("Keys.SoilStress"),
		ObsGPP:        cfg.GetString("Keys.ObsGPP"),
		ObsLatentHeat: cfg.GetString("Keys.ObsLatentHeat"),
	}
	return o, nil
}
