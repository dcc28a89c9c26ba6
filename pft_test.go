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
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

func TestMeanPFT(t *testing.T) {
	d := testDataset(3)
	d.Vars["pft"].Data.Set(math.NaN(), 2, 1)
	o, err := MeanPFT(d, "pft")
	if err != nil {
		t.Fatal(err)
	}
	v := o.Vars["pft"]
	if !reflect.DeepEqual(v.Dims, []string{TimeDim}) {
		t.Errorf("dims = %v", v.Dims)
	}
	checkValues(t, "mean", v.Data.Elements, []float64{0, 1.5, 2})
	if s, err := o.Series("pft"); err != nil || len(s.Values) != 3 {
		t.Errorf("series after reduction: %v, %v", s, err)
	}
	if len(d.Vars["pft"].Dims) != 2 {
		t.Error("input dataset was modified")
	}
}

func TestSumPFT(t *testing.T) {
	o, err := SumPFT(testDataset(3), "pft")
	if err != nil {
		t.Fatal(err)
	}
	checkValues(t, "sum", o.Vars["pft"].Data.Elements, []float64{0, 3, 6})
}

func TestMeanPFTNoPFT(t *testing.T) {
	d := testDataset(3)
	o, err := MeanPFT(d, "a")
	if err != nil {
		t.Fatal(err)
	}
	if o != d {
		t.Error("dataset without a pft dimension should be returned unchanged")
	}
}

func TestReduceAxis(t *testing.T) {
	// time, pft, y, x = 2, 3, 1, 2
	a := sparse.ZerosDense(2, 3, 1, 2)
	for i := range a.Elements {
		a.Elements[i] = float64(i)
	}
	o := reduceAxis(a, 1, Mean)
	if !reflect.DeepEqual(o.Shape, []int{2, 1, 2}) {
		t.Fatalf("shape = %v", o.Shape)
	}
	// Element (t, 0, x) is the mean of (t, p, 0, x) = 6t + 2p + x.
	checkValues(t, "mean", o.Elements, []float64{2, 3, 8, 9})
}
