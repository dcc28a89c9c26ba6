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

package hash

import (
	"image/color"
	"math"
	"testing"
)

type options struct {
	Labels []string
	Colors []color.Color
	Window int
	Range  [2]float64
}

type named string

func (n named) String() string { return "name:" + string(n) }

func TestHash(t *testing.T) {
	a := options{Labels: []string{"a", "b"}, Colors: []color.Color{color.Black}, Window: 3}
	b := options{Labels: []string{"a", "b"}, Colors: []color.Color{color.Black}, Window: 3}
	c := options{Labels: []string{"a", "b"}, Colors: []color.Color{color.White}, Window: 3}

	if Hash(a) != Hash(b) {
		t.Error("equal values should have equal hashes")
	}
	if Hash(a) == Hash(c) {
		t.Error("different values should have different hashes")
	}
	if len(Hash(a)) != 32 {
		t.Errorf("hash %q should be 32 hex digits", Hash(a))
	}

	nan := options{Range: [2]float64{math.NaN(), 1}}
	if Hash(nan) != Hash(nan) {
		t.Error("hash of value with NaN should be stable")
	}

	if Hash(named("x")) != Hash("name:x") {
		t.Error("Stringers should hash by their string")
	}
	if Hash(struct{ A, B int }{1, 2}) == Hash(struct{ A, B int }{2, 1}) {
		t.Error("field order should matter")
	}
}
