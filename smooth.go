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

package julesplot

import (
	"fmt"
	"math"
	"strings"
)

// SmoothMode specifies how a series is smoothed.
type SmoothMode string

// The smoothing modes.
const (
	NoSmoothing     SmoothMode = "none"
	MeanSmoothing   SmoothMode = "mean"
	MedianSmoothing SmoothMode = "median"
)

// ParseSmoothMode converts s to a SmoothMode. An empty string means
// no smoothing.
func ParseSmoothMode(s string) (SmoothMode, error) {
	switch m := SmoothMode(strings.ToLower(s)); m {
	case "":
		return NoSmoothing, nil
	case NoSmoothing, MeanSmoothing, MedianSmoothing:
		return m, nil
	}
	return "", fmt.Errorf("julesplot: smoothing mode %q must be none, mean, or median: %w", s, ErrInvalidArgument)
}

// SmoothOptions configures Smooth.
type SmoothOptions struct {
	Mode SmoothMode

	// Window is the number of points in the centered rolling window.
	// It must be at least 1 in mean and median mode, where 1 leaves the
	// values unchanged. It is ignored when Mode is NoSmoothing.
	Window int

	// Percentiles, if not nil, holds the lower and upper percentiles
	// (0 to 100) of the confidence band calculated in median mode.
	Percentiles *[2]float64
}

// Smoothed holds the result of Smooth.
type Smoothed struct {
	Line Series

	// Lower and Upper hold the band around Line when Banded is true.
	Lower, Upper Series
	Banded       bool
}

// Smooth applies a centered rolling window to s.
//
// The window for point i covers points i-W/2 through i+(W-1)/2, so odd
// windows are symmetric and even windows extend one point further into
// the past. Points near either end whose window would run past the end
// of the series are set to NaN. NaN values within a window are ignored,
// and a window holding only NaN values produces NaN.
//
// In median mode with Percentiles set, the Lower and Upper bands hold the
// rolling lower and upper percentiles of each window. s is not modified.
func Smooth(s Series, o SmoothOptions) (Smoothed, error) {
	if o.Window < 1 && (o.Mode == MeanSmoothing || o.Mode == MedianSmoothing) {
		return Smoothed{}, fmt.Errorf("julesplot: smoothing window %d must be at least 1: %w", o.Window, ErrInvalidArgument)
	}
	if o.Percentiles != nil {
		for _, p := range o.Percentiles {
			if p < 0 || p > 100 || math.IsNaN(p) {
				return Smoothed{}, fmt.Errorf("julesplot: percentile %g must be between 0 and 100: %w", p, ErrInvalidArgument)
			}
		}
	}
	w := o.Window
	switch o.Mode {
	case NoSmoothing, "":
		return Smoothed{Line: s.Copy()}, nil
	case MeanSmoothing:
		return Smoothed{Line: rolling(s, w, Mean)}, nil
	case MedianSmoothing:
		out := Smoothed{Line: rolling(s, w, Median)}
		if o.Percentiles != nil {
			out.Lower = rolling(s, w, Quantile(o.Percentiles[0]/100))
			out.Upper = rolling(s, w, Quantile(o.Percentiles[1]/100))
			out.Banded = true
		}
		return out, nil
	}
	return Smoothed{}, fmt.Errorf("julesplot: smoothing mode %q must be none, mean, or median: %w", o.Mode, ErrInvalidArgument)
}

func rolling(s Series, w int, r Reducer) Series {
	o := s.Copy()
	before, after := w/2, (w-1)/2
	buf := make([]float64, 0, w)
	for i := range s.Values {
		if i-before < 0 || i+after >= len(s.Values) {
			o.Values[i] = math.NaN()
			continue
		}
		o.Values[i] = r.reduce(finite(buf[:0], s.Values[i-before:i+after+1]))
	}
	return o
}
