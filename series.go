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

// A Converter returns a copy of a dataset with one variable converted
// to different units, such as NormalizeModelCarbon.
type Converter func(d *Dataset, name string) (*Dataset, error)

// DailySeries returns the daily values of variable name in d. The
// variable is converted with convert, if it is not nil, averaged over
// plant functional types and then reduced to daily values with r.
func DailySeries(d *Dataset, name string, r Reducer, convert Converter) (Series, error) {
	d, err := d.Select(name)
	if err != nil {
		return Series{}, err
	}
	if convert != nil {
		if d, err = convert(d, name); err != nil {
			return Series{}, err
		}
	}
	if d, err = MeanPFT(d, name); err != nil {
		return Series{}, err
	}
	if d, err = Daily(d, r); err != nil {
		return Series{}, err
	}
	return d.Series(name)
}

// ClockSeries returns the values of variable name in d at the given
// time of day ("HH:MM:SS"), averaged over plant functional types.
func ClockSeries(d *Dataset, name, clock string) (Series, error) {
	d, err := d.Select(name)
	if err != nil {
		return Series{}, err
	}
	if d, err = MeanPFT(d, name); err != nil {
		return Series{}, err
	}
	if d, err = AtTime(d, clock); err != nil {
		return Series{}, err
	}
	return d.Series(name)
}
