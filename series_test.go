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
)

func TestDailySeries(t *testing.T) {
	d := testDataset(48)
	s, err := DailySeries(d, "pft", Total, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Mean over pft of [i, 2i] is 1.5i, summed over each day.
	checkValues(t, "pft", s.Values, []float64{1.5 * 276, 1.5 * 852})

	s, err = DailySeries(d, "a", Total, NormalizeModelCarbon)
	if err != nil {
		t.Fatal(err)
	}
	checkValues(t, "a", s.Values, []float64{276 * 3.6e6, 852 * 3.6e6})

	if _, err := DailySeries(d, "nope", Mean, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestClockSeries(t *testing.T) {
	s, err := ClockSeries(testDataset(48), "pft", "12:00:00")
	if err != nil {
		t.Fatal(err)
	}
	checkValues(t, "pft", s.Values, []float64{18, 54})
	if !s.Time[1].Equal(start2020.AddDate(0, 0, 1)) {
		t.Errorf("time = %v", s.Time)
	}
}
