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
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/kr/pretty"
)

var start2020 = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// testDataset returns a dataset with n hourly time steps starting at
// 2020-01-01 and three variables: "a" = i, "pft" = [i, 2i] along a pft
// dimension, and "gaps", which is i on the first day and NaN afterwards.
func testDataset(n int) *Dataset {
	d := &Dataset{Path: "test.nc", Vars: make(map[string]*Variable)}
	a := sparse.ZerosDense(n)
	p := sparse.ZerosDense(n, 2)
	g := sparse.ZerosDense(n)
	for i := 0; i < n; i++ {
		d.Time = append(d.Time, start2020.Add(time.Duration(i)*time.Hour))
		a.Elements[i] = float64(i)
		p.Set(float64(i), i, 0)
		p.Set(float64(2*i), i, 1)
		if i < 24 {
			g.Elements[i] = float64(i)
		} else {
			g.Elements[i] = math.NaN()
		}
	}
	d.Vars["a"] = &Variable{Dims: []string{TimeDim}, Units: "kg m-2 s-1", Data: a}
	d.Vars["pft"] = &Variable{Dims: []string{TimeDim, PFTDim}, Units: "MPa", Data: p}
	d.Vars["gaps"] = &Variable{Dims: []string{TimeDim}, Data: g}
	d.Vars["height"] = &Variable{Dims: []string{PFTDim}, Data: sparse.ZerosDense(2)}
	return d
}

func different(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) != math.IsNaN(b)
	}
	return math.Abs(a-b) > tol
}

func TestSeries(t *testing.T) {
	d := testDataset(3)
	t.Run("1d", func(t *testing.T) {
		s, err := d.Series("a")
		if err != nil {
			t.Fatal(err)
		}
		want := Series{Time: d.Time, Values: []float64{0, 1, 2}}
		if diff := pretty.Diff(s, want); len(diff) > 0 {
			t.Errorf("series: %v", diff)
		}
	})
	t.Run("pft", func(t *testing.T) {
		s, err := d.Series("pft", 1)
		if err != nil {
			t.Fatal(err)
		}
		want := []float64{0, 2, 4}
		if diff := pretty.Diff(s.Values, want); len(diff) > 0 {
			t.Errorf("series: %v", diff)
		}
	})
	t.Run("missing index", func(t *testing.T) {
		if _, err := d.Series("pft"); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})
	t.Run("no time", func(t *testing.T) {
		if _, err := d.Series("height", 0); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})
	t.Run("missing variable", func(t *testing.T) {
		if _, err := d.Series("xxx"); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestFromSeries(t *testing.T) {
	s := Series{Time: []time.Time{start2020, start2020.Add(time.Hour)}, Values: []float64{3, 4}}
	d := FromSeries("x", "m", s)
	s2, err := d.Series("x")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(s, s2); len(diff) > 0 {
		t.Error(diff)
	}
	s.Values[0] = 10
	if s2.Values[0] != 3 {
		t.Error("FromSeries shares memory with its input")
	}
}

func TestSelect(t *testing.T) {
	d := testDataset(3)
	s, err := d.Select("a", "height")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(s.Names(), []string{"a", "height"}); len(diff) > 0 {
		t.Error(diff)
	}
	if s.Vars["a"] != d.Vars["a"] || len(s.Time) != 3 {
		t.Error("selection should share variables and time with its source")
	}
	if _, err := d.Select("a", "xxx"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
