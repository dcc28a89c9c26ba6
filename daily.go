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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type reducerKind int

const (
	total reducerKind = iota
	mean
	median
	maximum
	minimum
	std
	quantile
)

// Reducer reduces the samples within one day to a single value.
type Reducer struct {
	kind reducerKind
	q    float64
}

// The available reducers.
var (
	Total  = Reducer{kind: total}
	Mean   = Reducer{kind: mean}
	Median = Reducer{kind: median, q: 0.5}
	Max    = Reducer{kind: maximum}
	Min    = Reducer{kind: minimum}
	Std    = Reducer{kind: std}
)

// Quantile returns a reducer that calculates quantile q, where
// 0 <= q <= 1.
func Quantile(q float64) Reducer {
	return Reducer{kind: quantile, q: q}
}

func (r Reducer) String() string {
	switch r.kind {
	case total:
		return "total"
	case mean:
		return "mean"
	case median:
		return "median"
	case maximum:
		return "max"
	case minimum:
		return "min"
	case std:
		return "std"
	case quantile:
		return fmt.Sprintf("quantile(%g)", r.q)
	}
	return "unknown"
}

// ParseReducer converts a reducer name (total, sum, mean, median, max,
// min, std, or qNN where NN is a percentile such as q90) into a Reducer.
func ParseReducer(s string) (Reducer, error) {
	s = strings.ToLower(s)
	switch s {
	case "total", "sum":
		return Total, nil
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	case "std":
		return Std, nil
	}
	if strings.HasPrefix(s, "q") {
		p, err := strconv.ParseFloat(s[1:], 64)
		if err == nil {
			r := Quantile(p / 100)
			return r, r.check()
		}
	}
	return Reducer{}, fmt.Errorf("julesplot: unknown reducer %q: %w", s, ErrInvalidArgument)
}

func (r Reducer) check() error {
	if r.kind == quantile && (r.q < 0 || r.q > 1 || math.IsNaN(r.q)) {
		return fmt.Errorf("julesplot: quantile %g must be between 0 and 1: %w", r.q, ErrInvalidArgument)
	}
	return nil
}

// reduce applies r to vals, which may be reordered. NaN values
// must already be removed.
func (r Reducer) reduce(vals []float64) float64 {
	if len(vals) == 0 {
		if r.kind == total {
			return 0
		}
		return math.NaN()
	}
	switch r.kind {
	case total:
		return floats.Sum(vals)
	case mean:
		return stat.Mean(vals, nil)
	case maximum:
		return floats.Max(vals)
	case minimum:
		return floats.Min(vals)
	case std:
		_, variance := stat.PopMeanVariance(vals, nil)
		return math.Sqrt(variance)
	case median, quantile:
		sort.Float64s(vals)
		return sortedQuantile(vals, r.q)
	}
	panic(fmt.Errorf("invalid reducer kind %d", r.kind))
}

// sortedQuantile returns quantile q of the sorted values s, linearly
// interpolating between the two closest ranks.
func sortedQuantile(s []float64, q float64) float64 {
	h := q * float64(len(s)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(s)-1 {
		return s[len(s)-1]
	}
	return s[i] + (h-lo)*(s[i+1]-s[i])
}

// finite appends the non-NaN values in vals to dst.
func finite(dst, vals []float64) []float64 {
	for _, v := range vals {
		if !math.IsNaN(v) {
			dst = append(dst, v)
		}
	}
	return dst
}

// day returns midnight UTC of the calendar date of t.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// groupDays returns the distinct calendar dates in times, in ascending
// order, and the indices of the timestamps falling on each date.
func groupDays(times []time.Time) ([]time.Time, [][]int) {
	index := make(map[time.Time]int)
	var days []time.Time
	var members [][]int
	for i, t := range times {
		d := day(t)
		j, ok := index[d]
		if !ok {
			j = len(days)
			index[d] = j
			days = append(days, d)
			members = append(members, nil)
		}
		members[j] = append(members[j], i)
	}
	order := make([]int, len(days))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return days[order[a]].Before(days[order[b]]) })
	sortedDays := make([]time.Time, len(days))
	sortedMembers := make([][]int, len(days))
	for i, j := range order {
		sortedDays[i] = days[j]
		sortedMembers[i] = members[j]
	}
	return sortedDays, sortedMembers
}

// Daily resamples every time-indexed variable in d to one value per
// calendar day using reducer r. The output has one time step, at
// midnight UTC, for each distinct date present in d. Missing (NaN)
// samples are ignored. Variables without a time dimension are
// carried over unchanged.
func Daily(d *Dataset, r Reducer) (*Dataset, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	days, members := groupDays(d.Time)
	o := &Dataset{Path: d.Path, Time: days, Vars: make(map[string]*Variable, len(d.Vars))}
	buf := make([]float64, 0, 48)
	for name, v := range d.Vars {
		if !v.TimeIndexed() {
			o.Vars[name] = v
			continue
		}
		stride := v.stride()
		shape := append([]int{len(days)}, v.Data.Shape[1:]...)
		data := sparse.ZerosDense(shape...)
		for di, idx := range members {
			for j := 0; j < stride; j++ {
				buf = buf[:0]
				for _, t := range idx {
					val := v.Data.Elements[t*stride+j]
					if !math.IsNaN(val) {
						buf = append(buf, val)
					}
				}
				data.Elements[di*stride+j] = r.reduce(buf)
			}
		}
		o.Vars[name] = &Variable{Dims: v.Dims, Units: v.Units, LongName: v.LongName, Data: data}
	}
	return o, nil
}

// ParseTimeOfDay parses a time of day in the format HH:MM:SS.
func ParseTimeOfDay(s string) (hour, minute, second int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, &ParseError{Value: s, Err: fmt.Errorf("want HH:MM:SS")}
	}
	var v [3]int
	limits := [3]int{23, 59, 59}
	for i, p := range parts {
		if v[i], err = strconv.Atoi(strings.TrimSpace(p)); err != nil {
			return 0, 0, 0, &ParseError{Value: s, Err: err}
		}
		if v[i] < 0 || v[i] > limits[i] {
			return 0, 0, 0, &ParseError{Value: s, Err: fmt.Errorf("field %d out of range [0, %d]", v[i], limits[i])}
		}
	}
	return v[0], v[1], v[2], nil
}

// AtTime samples every time-indexed variable in d once per calendar day,
// at the given time of day (HH:MM:SS, UTC). Days without a sample at
// exactly that time are left out. Output time steps are labelled with
// midnight of their day, so that they line up with the output of Daily.
func AtTime(d *Dataset, clock string) (*Dataset, error) {
	h, m, s, err := ParseTimeOfDay(clock)
	if err != nil {
		return nil, err
	}
	var keep []int
	var days []time.Time
	for i, t := range d.Time {
		t = t.UTC()
		if t.Hour() == h && t.Minute() == m && t.Second() == s {
			keep = append(keep, i)
			days = append(days, day(t))
		}
	}
	o := &Dataset{Path: d.Path, Time: days, Vars: make(map[string]*Variable, len(d.Vars))}
	for name, v := range d.Vars {
		if !v.TimeIndexed() {
			o.Vars[name] = v
			continue
		}
		o.Vars[name] = v.selectTimes(keep)
	}
	return o, nil
}

// selectTimes returns a copy of v holding only the given time steps.
func (v *Variable) selectTimes(idx []int) *Variable {
	stride := v.stride()
	shape := append([]int{len(idx)}, v.Data.Shape[1:]...)
	data := sparse.ZerosDense(shape...)
	for i, t := range idx {
		copy(data.Elements[i*stride:(i+1)*stride], v.Data.Elements[t*stride:(t+1)*stride])
	}
	return &Variable{Dims: v.Dims, Units: v.Units, LongName: v.LongName, Data: data}
}
