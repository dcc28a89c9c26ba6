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
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestTimeStep(t *testing.T) {
	d := testDataset(3)
	dt, err := TimeStep(d)
	if err != nil {
		t.Fatal(err)
	}
	if dt != time.Hour {
		t.Errorf("dt = %v, want 1h", dt)
	}

	d.Time[1] = d.Time[0].Add(1800*time.Second + 700*time.Millisecond)
	dt, err = TimeStep(d)
	if err != nil {
		t.Fatal(err)
	}
	if dt != 1800*time.Second {
		t.Errorf("dt = %v, want 30m0s", dt)
	}

	if _, err := TimeStep(testDataset(1)); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestCarbonFactors(t *testing.T) {
	m, err := ModelCarbonFactor(30 * time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinRel(m, 1000*1800, 1e-12) {
		t.Errorf("model factor = %g, want %g", m, 1000.*1800)
	}
	o, err := ObservedCarbonFactor(30 * time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinRel(o, 1e-6*12.01*1800, 1e-12) {
		t.Errorf("observation factor = %g, want %g", o, 1e-6*12.01*1800)
	}
}

func TestNormalizeCarbon(t *testing.T) {
	d := testDataset(4)
	for _, test := range []struct {
		name   string
		f      func(*Dataset, string) (*Dataset, error)
		factor float64
	}{
		{name: "model", f: NormalizeModelCarbon, factor: 1000 * 3600},
		{name: "observation", f: NormalizeObservedCarbon, factor: 1e-6 * 12.01 * 3600},
	} {
		t.Run(test.name, func(t *testing.T) {
			o, err := test.f(d, "a")
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range o.Vars["a"].Data.Elements {
				if want := float64(i) * test.factor; !scalar.EqualWithinAbsOrRel(v, want, 1e-9, 1e-12) {
					t.Errorf("a[%d] = %g, want %g", i, v, want)
				}
			}
			if o.Vars["a"].Units != CarbonUnits {
				t.Errorf("units = %q", o.Vars["a"].Units)
			}
			if d.Vars["a"].Data.Elements[3] != 3 || d.Vars["a"].Units != "kg m-2 s-1" {
				t.Error("input dataset was modified")
			}
			if o.Vars["pft"] != d.Vars["pft"] {
				t.Error("other variables should be shared")
			}
		})
	}
}

func TestNormalizeCarbonLinear(t *testing.T) {
	d := testDataset(5)
	scaled := d.withVar("a", &Variable{Dims: d.Vars["a"].Dims, Data: d.Vars["a"].Data.ScaleCopy(7.5)})
	a, err := NormalizeObservedCarbon(d, "a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NormalizeObservedCarbon(scaled, "a")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range a.Vars["a"].Data.Elements {
		if w := b.Vars["a"].Data.Elements[i]; !scalar.EqualWithinAbsOrRel(v*7.5, w, 1e-12, 1e-12) {
			t.Errorf("%d: %g * 7.5 != %g", i, v, w)
		}
	}
}

func TestNormalizeCarbonErrors(t *testing.T) {
	if _, err := NormalizeModelCarbon(testDataset(1), "a"); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
	if _, err := NormalizeModelCarbon(testDataset(3), "nope"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
