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
	"io"
	"math"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// fillValue is written in place of NaN.
const fillValue = -1.0e20

// timeUnits are the units of the time variable in written files.
const timeUnits = "seconds since 1970-01-01 00:00:00"

// Open loads the netCDF file at path. NetCDF-3 classic files are read
// with the cdf package; anything that cannot be read that way (for
// example netCDF-4 files) is read with the native netCDF reader.
// The file must contain a CF-style "time" variable.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("julesplot: opening dataset: %v", err)
	}
	defer f.Close()

	ds, cdfErr := readCDF(f, path)
	if cdfErr == nil {
		return ds, nil
	}
	ds, err = readNative(path)
	if err != nil {
		return nil, fmt.Errorf("julesplot: reading %s: %v (classic reader: %v)", path, err, cdfErr)
	}
	return ds, nil
}

func readCDF(f *os.File, path string) (*Dataset, error) {
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	nrec := int(ff.Header.NumRecs(fi.Size()))

	lengths := func(v string) []int {
		l := append([]int(nil), ff.Header.Lengths(v)...)
		if ff.Header.IsRecordVariable(v) {
			l[0] = nrec
		}
		return l
	}

	if indexOf(ff.Header.Variables(), TimeDim) < 0 {
		return nil, fmt.Errorf("no %s variable", TimeDim)
	}
	tvals, err := readCDFVar(ff, TimeDim, lengths(TimeDim))
	if err != nil {
		return nil, err
	}
	times, err := decodeTime(tvals, cdfString(ff.Header.GetAttribute(TimeDim, "units")),
		cdfString(ff.Header.GetAttribute(TimeDim, "calendar")))
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Path: path, Time: times, Vars: make(map[string]*Variable)}
	for _, name := range ff.Header.Variables() {
		if name == TimeDim {
			continue
		}
		l := lengths(name)
		vals, err := readCDFVar(ff, name, l)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %v", name, err)
		}
		if vals == nil {
			continue // Character data.
		}
		for _, att := range []string{"_FillValue", "missing_value"} {
			if fv, ok := toFloats(ff.Header.GetAttribute(name, att)); ok && len(fv) > 0 {
				setNaN(vals, fv[0])
			}
		}
		ds.Vars[name] = newVariable(ff.Header.Dimensions(name), l, vals,
			cdfString(ff.Header.GetAttribute(name, "units")),
			cdfString(ff.Header.GetAttribute(name, "long_name")))
	}
	return ds, nil
}

// readCDFVar reads all the values of variable v, which has the given
// dimension lengths. It returns nil if v is not numeric.
func readCDFVar(ff *cdf.File, v string, lengths []int) ([]float64, error) {
	n := 1
	end := make([]int, len(lengths))
	for i, l := range lengths {
		n *= l
		end[i] = l - 1
	}
	if n == 0 {
		return []float64{}, nil
	}
	r := ff.Reader(v, nil, end)
	buf := r.Zero(n)
	if _, ok := buf.([]uint8); ok {
		return nil, nil
	}
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return nil, err
	}
	data, _ := toFloats(buf)
	return data, nil
}

// readNative reads the file at path using the pure Go netCDF reader,
// which understands both the classic and HDF5-based formats.
func readNative(path string) (*Dataset, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	tv, err := nc.GetVariable(TimeDim)
	if err != nil {
		return nil, fmt.Errorf("no %s variable: %v", TimeDim, err)
	}
	tvals, _, ok := flatten(tv.Values)
	if !ok {
		return nil, fmt.Errorf("%s variable is not numeric", TimeDim)
	}
	times, err := decodeTime(tvals, nativeString(tv.Attributes, "units"), nativeString(tv.Attributes, "calendar"))
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Path: path, Time: times, Vars: make(map[string]*Variable)}
	for _, name := range nc.ListVariables() {
		if name == TimeDim {
			continue
		}
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %v", name, err)
		}
		vals, shape, ok := flatten(v.Values)
		if !ok || len(shape) != len(v.Dimensions) {
			continue
		}
		for _, att := range []string{"_FillValue", "missing_value"} {
			if a, has := v.Attributes.Get(att); has {
				if fv, ok := toFloats(a); ok && len(fv) > 0 {
					setNaN(vals, fv[0])
				}
			}
		}
		ds.Vars[name] = newVariable(v.Dimensions, shape, vals,
			nativeString(v.Attributes, "units"), nativeString(v.Attributes, "long_name"))
	}
	return ds, nil
}

func newVariable(dims []string, shape []int, vals []float64, units, longName string) *Variable {
	s := make([]int, len(shape))
	copy(s, shape)
	if len(s) == 0 {
		s = []int{1}
	}
	data := sparse.ZerosDense(s...)
	copy(data.Elements, vals)
	d := make([]string, len(dims))
	copy(d, dims)
	return &Variable{Dims: d, Units: units, LongName: longName, Data: data}
}

func setNaN(vals []float64, fill float64) {
	for i, v := range vals {
		if v == fill {
			vals[i] = math.NaN()
		}
	}
}

func cdfString(a interface{}) string {
	switch s := a.(type) {
	case string:
		return strings.TrimRight(s, "\x00")
	case []uint8:
		return strings.TrimRight(string(s), "\x00")
	}
	return ""
}

func nativeString(a interface {
	Get(string) (any, bool)
}, key string) string {
	if a == nil {
		return ""
	}
	v, ok := a.Get(key)
	if !ok {
		return ""
	}
	return cdfString(v)
}

// flatten converts a possibly nested slice of numbers, or a single
// number, into a flat slice in row-major order and its shape.
func flatten(v any) ([]float64, []int, bool) {
	rv := reflect.ValueOf(v)
	var shape []int
	for t := rv; t.Kind() == reflect.Slice; t = t.Index(0) {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			return []float64{}, shape, true
		}
	}
	var out []float64
	var walk func(reflect.Value) bool
	walk = func(x reflect.Value) bool {
		if x.Kind() == reflect.Slice {
			for i := 0; i < x.Len(); i++ {
				if !walk(x.Index(i)) {
					return false
				}
			}
			return true
		}
		f, ok := number(x)
		out = append(out, f)
		return ok
	}
	if !walk(rv) {
		return nil, nil, false
	}
	return out, shape, true
}

// toFloats converts a number or a flat slice of numbers to float64.
func toFloats(v any) ([]float64, bool) {
	if v == nil {
		return nil, false
	}
	out, shape, ok := flatten(v)
	if !ok || len(shape) > 1 {
		return nil, false
	}
	return out, true
}

func number(x reflect.Value) (float64, bool) {
	switch x.Kind() {
	case reflect.Float32, reflect.Float64:
		return x.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(x.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(x.Uint()), true
	}
	return 0, false
}

// decodeTime converts CF time values such as "days since 2000-01-01"
// to timestamps in UTC.
func decodeTime(vals []float64, units, calendar string) ([]time.Time, error) {
	switch strings.ToLower(calendar) {
	case "", "standard", "gregorian", "proleptic_gregorian":
	default:
		return nil, fmt.Errorf("julesplot: unsupported calendar %q: %w", calendar, ErrInvalidArgument)
	}
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("julesplot: invalid time units %q: %w", units, ErrInvalidArgument)
	}
	var step float64 // seconds
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		step = 1
	case "minutes", "minute", "mins", "min":
		step = 60
	case "hours", "hour", "hrs", "hr", "h":
		step = 3600
	case "days", "day", "d":
		step = 86400
	default:
		return nil, fmt.Errorf("julesplot: invalid time units %q: %w", units, ErrInvalidArgument)
	}
	ref, err := parseReference(parts[1])
	if err != nil {
		return nil, fmt.Errorf("julesplot: invalid time units %q: %v: %w", units, err, ErrInvalidArgument)
	}
	t := make([]time.Time, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("julesplot: invalid time value %g: %w", v, ErrInvalidArgument)
		}
		// Whole days and the remaining seconds are added separately
		// to stay within the range of time.Duration.
		secs := math.Round(v * step)
		days := math.Trunc(secs / 86400)
		rem := secs - days*86400
		t[i] = ref.AddDate(0, 0, int(days)).Add(time.Duration(rem) * time.Second)
	}
	return t, nil
}

var referenceLayouts = []string{
	"2006-1-2 15:4:5",
	"2006-1-2T15:4:5",
	"2006-1-2 15:4",
	"2006-1-2",
}

func parseReference(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "UTC")
	s = strings.TrimSuffix(s, "Z")
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "."); i > 0 {
		s = s[:i] // Drop fractional seconds.
	}
	var err error
	for _, layout := range referenceLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Write writes d to w in netCDF-3 classic format. NaN values are
// written as a fill value.
func Write(w *os.File, d *Dataset) error {
	if len(d.Time) == 0 {
		return fmt.Errorf("julesplot: writing dataset: no time steps: %w", ErrInsufficientData)
	}
	names := d.Names()
	dims := []string{TimeDim}
	lengths := []int{len(d.Time)}
	for _, name := range names {
		v := d.Vars[name]
		for i, dim := range v.Dims {
			j := indexOf(dims, dim)
			if j < 0 {
				dims = append(dims, dim)
				lengths = append(lengths, v.Data.Shape[i])
			} else if lengths[j] != v.Data.Shape[i] {
				return fmt.Errorf("julesplot: writing variable %s: dimension %s has length %d, expected %d: %w",
					name, dim, v.Data.Shape[i], lengths[j], ErrInvalidArgument)
			}
		}
	}

	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", "julesplot data file")
	if d.Path != "" {
		h.AddAttribute("", "source", d.Path)
	}
	h.AddVariable(TimeDim, []string{TimeDim}, []float64{0})
	h.AddAttribute(TimeDim, "units", timeUnits)
	h.AddAttribute(TimeDim, "calendar", "standard")
	for _, name := range names {
		v := d.Vars[name]
		h.AddVariable(name, v.Dims, []float64{0})
		if v.Units != "" {
			h.AddAttribute(name, "units", v.Units)
		}
		if v.LongName != "" {
			h.AddAttribute(name, "long_name", v.LongName)
		}
		h.AddAttribute(name, "_FillValue", []float64{fillValue})
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}

	t := make([]float64, len(d.Time))
	for i, tt := range d.Time {
		t[i] = float64(tt.Unix())
	}
	if err = writeVar(f, TimeDim, t); err != nil {
		return fmt.Errorf("julesplot: writing time variable: %v", err)
	}
	for _, name := range names {
		if err = writeNCF(f, name, d.Vars[name].Data); err != nil {
			return fmt.Errorf("julesplot: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray) error {
	out := make([]float64, len(data.Elements))
	for i, e := range data.Elements {
		if math.IsNaN(e) {
			e = fillValue
		}
		out[i] = e
	}
	return writeVar(f, name, out)
}

// writeVar writes the full extent of variable name. The writer is given
// explicit bounds so that it stops at the end of the variable rather than
// reporting io.EOF.
func writeVar(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(data)
	return err
}

func indexOf(s []string, v string) int {
	for i, ss := range s {
		if ss == v {
			return i
		}
	}
	return -1
}
