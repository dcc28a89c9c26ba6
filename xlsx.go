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
	"strings"

	"github.com/tealeg/xlsx"
)

// TimeLayout is the format of timestamps in spreadsheet output.
const TimeLayout = "2006-01-02 15:04:05"

// WriteXLSX writes the time-indexed variables in d to a spreadsheet
// at path, one sheet per variable. The first column holds the time and
// the remaining columns hold the elements along the non-time dimensions.
// Missing values are left blank.
func WriteXLSX(path string, d *Dataset) error {
	f := xlsx.NewFile()
	for _, name := range d.Names() {
		v := d.Vars[name]
		if !v.TimeIndexed() {
			continue
		}
		sheet, err := f.AddSheet(sheetName(name))
		if err != nil {
			return fmt.Errorf("julesplot: adding sheet for %s: %v", name, err)
		}
		stride := v.stride()
		row := sheet.AddRow()
		row.AddCell().SetString(TimeDim)
		for j := 0; j < stride; j++ {
			row.AddCell().SetString(columnName(name, v, j))
		}
		for t, tt := range d.Time {
			row := sheet.AddRow()
			row.AddCell().SetString(tt.UTC().Format(TimeLayout))
			for j := 0; j < stride; j++ {
				c := row.AddCell()
				if val := v.Data.Elements[t*stride+j]; !math.IsNaN(val) {
					c.SetFloat(val)
				}
			}
		}
	}
	if len(f.Sheets) == 0 {
		return fmt.Errorf("julesplot: writing %s: no time-indexed variables: %w", path, ErrInvalidArgument)
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("julesplot: writing %s: %v", path, err)
	}
	return nil
}

// sheetName strips the characters not allowed in sheet names
// and shortens name to the maximum sheet name length.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// columnName labels element j of a time step of v with its indices
// along the non-time dimensions, for example "gpp[pft=2,y=0,x=0]".
func columnName(name string, v *Variable, j int) string {
	if len(v.Dims) == 1 {
		return name
	}
	idx := v.Data.IndexNd(j)
	var parts []string
	for i, dim := range v.Dims[1:] {
		parts = append(parts, fmt.Sprintf("%s=%d", dim, idx[i+1]))
	}
	return fmt.Sprintf("%s[%s]", name, strings.Join(parts, ","))
}
