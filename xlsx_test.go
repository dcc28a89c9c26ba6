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
	"path/filepath"
	"testing"

	"github.com/tealeg/xlsx"
)

func TestWriteXLSX(t *testing.T) {
	d := testDataset(30)
	path := filepath.Join(t.TempDir(), "daily.xlsx")
	if err := WriteXLSX(path, d); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Sheets) != 3 {
		t.Fatalf("%d sheets, want 3 (height has no time dimension)", len(f.Sheets))
	}

	a, ok := f.Sheet["a"]
	if !ok {
		t.Fatal("missing sheet a")
	}
	if len(a.Rows) != 31 {
		t.Fatalf("%d rows, want 31", len(a.Rows))
	}
	if h := a.Rows[0].Cells[1].String(); h != "a" {
		t.Errorf("header = %q", h)
	}
	if ts := a.Rows[3].Cells[0].String(); ts != "2020-01-01 02:00:00" {
		t.Errorf("time = %q", ts)
	}
	if v, err := a.Rows[3].Cells[1].Float(); err != nil || v != 2 {
		t.Errorf("a[2] = %g, %v", v, err)
	}

	p := f.Sheet["pft"]
	if h := p.Rows[0].Cells[2].String(); h != "pft[pft=1]" {
		t.Errorf("header = %q", h)
	}
	if v, err := p.Rows[5].Cells[2].Float(); err != nil || v != 8 {
		t.Errorf("pft[4, 1] = %g, %v", v, err)
	}

	g := f.Sheet["gaps"]
	if len(g.Rows[30].Cells) > 1 {
		if s := g.Rows[30].Cells[1].String(); s != "" {
			t.Errorf("missing value written as %q", s)
		}
	}
}

func TestWriteXLSXNoTime(t *testing.T) {
	d := testDataset(3)
	d.Vars = map[string]*Variable{"height": d.Vars["height"]}
	if err := WriteXLSX(filepath.Join(t.TempDir(), "x.xlsx"), d); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestSheetName(t *testing.T) {
	for _, c := range [][2]string{
		{"gpp_gb", "gpp_gb"},
		{"a/b:c", "a_b_c"},
		{"a_very_long_variable_name_exceeding", "a_very_long_variable_name_excee"},
	} {
		in, want := c[0], c[1]
		if got := sheetName(in); got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}
