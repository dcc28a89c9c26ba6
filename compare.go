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
	"time"

	"github.com/GaryBoone/GoStats/stats"
)

// Stats holds model performance statistics relative to observations.
type Stats struct {
	// N is the number of days used in the comparison.
	N int

	// MB and ME are the mean bias and mean error, in the units of
	// the data.
	MB, ME float64

	// MFB and MFE are the mean fractional bias and mean fractional
	// error, as fractions.
	MFB, MFE float64

	// Slope, Intercept and R2 are from a linear regression of the
	// model values against the observations.
	Slope, Intercept, R2 float64
}

// Compare calculates statistics of model against obs, using the
// calendar days where both series have a finite value. If a series has
// more than one value on a day, the last one is used.
func Compare(model, obs Series) (Stats, error) {
	o := make(map[time.Time]float64)
	for i, t := range obs.Time {
		if v := obs.Values[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			o[day(t)] = v
		}
	}
	m := make(map[time.Time]float64)
	var days []time.Time
	for i, t := range model.Time {
		v := model.Values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		d := day(t)
		if _, ok := o[d]; !ok {
			continue
		}
		if _, ok := m[d]; !ok {
			days = append(days, d)
		}
		m[d] = v
	}
	if len(days) < 2 {
		return Stats{}, fmt.Errorf("julesplot: comparison needs at least 2 shared days, have %d: %w",
			len(days), ErrInsufficientData)
	}
	x := make([]float64, len(days))
	y := make([]float64, len(days))
	for i, d := range days {
		x[i], y[i] = o[d], m[d]
	}
	s := Stats{
		N:   len(days),
		MB:  mb(x, y),
		ME:  me(x, y),
		MFB: mfb(x, y),
		MFE: mfe(x, y),
	}
	s.Slope, s.Intercept, s.R2, _, _, _ = stats.LinearRegression(x, y)
	if math.IsNaN(s.R2) {
		s.R2 = 0
	}
	return s, nil
}

func mfb(a, b []float64) float64 {
	r := 0.
	for i, v1 := range a {
		v2 := b[i]
		if v1+v2 != 0 {
			r += 2 * (v2 - v1) / (v1 + v2)
		}
	}
	return r / float64(len(a))
}

func mfe(a, b []float64) float64 {
	r := 0.
	for i, v1 := range a {
		v2 := b[i]
		if v1+v2 != 0 {
			r += 2 * math.Abs(v2-v1) / math.Abs(v1+v2)
		}
	}
	return r / float64(len(a))
}

func mb(a, b []float64) float64 {
	r := 0.
	for i, v1 := range a {
		r += b[i] - v1
	}
	return r / float64(len(a))
}

func me(a, b []float64) float64 {
	r := 0.
	for i, v1 := range a {
		r += math.Abs(b[i] - v1)
	}
	return r / float64(len(a))
}
