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

package batch

import (
	"fmt"
	"time"

	"github.com/spatialmodel/julesplot"
)

// SubWindowYears is the length of the sub-windows of long time windows.
const SubWindowYears = 3

// Window is a period of whole calendar years, from Start (inclusive)
// to End (exclusive).
type Window struct {
	Start, End time.Time
}

// TimeWindow returns the period covered by all of datasets, widened to
// whole years: it starts on January 1 of the year of the latest first
// time step and ends on January 1 of the year after the earliest last
// time step. It returns ErrNoOverlap if the datasets do not overlap.
func TimeWindow(datasets ...*julesplot.Dataset) (Window, error) {
	if len(datasets) == 0 {
		return Window{}, fmt.Errorf("batch: time window of no datasets: %w", julesplot.ErrInvalidArgument)
	}
	var first, last time.Time
	for i, d := range datasets {
		if len(d.Time) == 0 {
			return Window{}, fmt.Errorf("batch: %s has no time steps: %w", d.Path, julesplot.ErrInsufficientData)
		}
		if i == 0 || d.First().After(first) {
			first = d.First()
		}
		if i == 0 || d.Last().Before(last) {
			last = d.Last()
		}
	}
	if first.After(last) {
		return Window{}, fmt.Errorf("batch: latest start %s is after earliest end %s: %w",
			first.Format(time.RFC3339), last.Format(time.RFC3339), julesplot.ErrNoOverlap)
	}
	first, last = first.UTC(), last.UTC()
	return Window{
		Start: time.Date(first.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(last.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// Years returns the number of years spanned by w.
func (w Window) Years() int {
	return w.End.Year() - w.Start.Year()
}

// SubWindows returns the overlapping windows of n years that start in
// each year of w, or nil if w spans n years or fewer.
func (w Window) SubWindows(n int) []Window {
	years := w.Years()
	if n < 1 || years <= n {
		return nil
	}
	o := make([]Window, 0, years-n+1)
	for k := 0; k <= years-n; k++ {
		o = append(o, Window{Start: w.Start.AddDate(k, 0, 0), End: w.Start.AddDate(k+n, 0, 0)})
	}
	return o
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.Start.Year(), w.End.Year())
}
