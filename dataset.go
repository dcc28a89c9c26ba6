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

// Package julesplot loads output from the JULES land surface model and
// flux tower observations, aggregates it to daily values and prepares it
// for comparison plots.
package julesplot

import (
	"fmt"
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// Version gives the version number.
const Version = "0.3.0"

const (
	// TimeDim is the name of the time dimension.
	TimeDim = "time"

	// PFTDim is the name of the plant functional type dimension.
	PFTDim = "pft"
)

// Variable holds the data for one variable in a Dataset.
type Variable struct {
	// Dims holds the dimension names, outermost first.
	Dims []string

	Units    string
	LongName string

	// Data holds the values, with one entry along the first
	// axis for each time step when the variable is time-indexed.
	// Missing values are NaN.
	Data *sparse.DenseArray
}

// TimeIndexed returns whether the outermost dimension of v is time.
func (v *Variable) TimeIndexed() bool {
	return len(v.Dims) > 0 && v.Dims[0] == TimeDim
}

// dimIndex returns the position of dimension d in v, or -1.
func (v *Variable) dimIndex(d string) int {
	for i, dd := range v.Dims {
		if dd == d {
			return i
		}
	}
	return -1
}

// stride returns the number of elements in one time step of v.
func (v *Variable) stride() int {
	n := 1
	for _, l := range v.Data.Shape[1:] {
		n *= l
	}
	return n
}

// Dataset is a collection of variables sharing a time axis.
// Datasets are treated as immutable: the functions in this package
// return new Datasets rather than changing their inputs.
type Dataset struct {
	// Path is the file the dataset was loaded from.
	Path string

	// Time holds the time axis in ascending order.
	Time []time.Time

	Vars map[string]*Variable
}

// Names returns the sorted variable names in d.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Vars))
	for n := range d.Vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Var returns the variable with the given name.
func (d *Dataset) Var(name string) (*Variable, error) {
	v, ok := d.Vars[name]
	if !ok {
		return nil, fmt.Errorf("julesplot: variable %q not in dataset %s: %w", name, d.Path, ErrInvalidArgument)
	}
	return v, nil
}

// Select returns a Dataset holding only the named variables of d.
// The variables are shared with d.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	o := &Dataset{Path: d.Path, Time: d.Time, Vars: make(map[string]*Variable, len(names))}
	for _, n := range names {
		v, err := d.Var(n)
		if err != nil {
			return nil, err
		}
		o.Vars[n] = v
	}
	return o, nil
}

// First returns the first timestamp in d.
func (d *Dataset) First() time.Time { return d.Time[0] }

// Last returns the last timestamp in d.
func (d *Dataset) Last() time.Time { return d.Time[len(d.Time)-1] }

// withVar returns a shallow copy of d with variable name set to v.
func (d *Dataset) withVar(name string, v *Variable) *Dataset {
	o := &Dataset{
		Path: d.Path,
		Time: d.Time,
		Vars: make(map[string]*Variable, len(d.Vars)+1),
	}
	for n, vv := range d.Vars {
		o.Vars[n] = vv
	}
	o.Vars[name] = v
	return o
}

// Series is a single time series.
type Series struct {
	Time   []time.Time
	Values []float64
}

// Len returns the number of points in s.
func (s Series) Len() int { return len(s.Values) }

// Copy returns a deep copy of s.
func (s Series) Copy() Series {
	o := Series{
		Time:   make([]time.Time, len(s.Time)),
		Values: make([]float64, len(s.Values)),
	}
	copy(o.Time, s.Time)
	copy(o.Values, s.Values)
	return o
}

// Series extracts the time series of variable name. index selects the
// element along the non-time dimensions; it may be omitted when those
// dimensions hold a single element, as is the case for single point
// model runs with unit length x and y dimensions.
func (d *Dataset) Series(name string, index ...int) (Series, error) {
	v, err := d.Var(name)
	if err != nil {
		return Series{}, err
	}
	if !v.TimeIndexed() {
		return Series{}, fmt.Errorf("julesplot: variable %q has no %s dimension: %w", name, TimeDim, ErrInvalidArgument)
	}
	stride := v.stride()
	var offset int
	switch {
	case len(index) == 0 && stride == 1:
	case len(index) == len(v.Dims)-1:
		full := append([]int{0}, index...)
		if err := v.Data.CheckIndex(full); err != nil {
			return Series{}, fmt.Errorf("julesplot: series %q: %v: %w", name, err, ErrInvalidArgument)
		}
		offset = v.Data.Index1d(full...)
	default:
		return Series{}, fmt.Errorf("julesplot: variable %q has dimensions %v; "+
			"an index is needed for each non-time dimension: %w", name, v.Dims, ErrInvalidArgument)
	}
	s := Series{
		Time:   make([]time.Time, len(d.Time)),
		Values: make([]float64, len(d.Time)),
	}
	copy(s.Time, d.Time)
	for t := range d.Time {
		s.Values[t] = v.Data.Elements[t*stride+offset]
	}
	return s, nil
}

// FromSeries creates a single-variable Dataset from s.
func FromSeries(name, units string, s Series) *Dataset {
	data := sparse.ZerosDense(len(s.Values))
	copy(data.Elements, s.Values)
	t := make([]time.Time, len(s.Time))
	copy(t, s.Time)
	return &Dataset{
		Time: t,
		Vars: map[string]*Variable{
			name: {Dims: []string{TimeDim}, Units: units, Data: data},
		},
	}
}
