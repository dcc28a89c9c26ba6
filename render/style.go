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

// Package render draws JULES model output and flux tower observations
// as time series figures.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/spatialmodel/julesplot"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/vg"
)

// shortColors are the single letter color codes and the default
// color cycle names understood in addition to the SVG color names.
var shortColors = map[string]color.RGBA{
	"b":          {R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	"g":          {R: 0x00, G: 0x80, B: 0x00, A: 0xff},
	"r":          {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	"c":          {R: 0x00, G: 0xbf, B: 0xbf, A: 0xff},
	"m":          {R: 0xbf, G: 0x00, B: 0xbf, A: 0xff},
	"y":          {R: 0xbf, G: 0xbf, B: 0x00, A: 0xff},
	"k":          {R: 0x00, G: 0x00, B: 0x00, A: 0xff},
	"w":          {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"tab:blue":   {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"tab:orange": {R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	"tab:green":  {R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	"tab:red":    {R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	"tab:purple": {R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	"tab:brown":  {R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	"tab:pink":   {R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	"tab:gray":   {R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	"tab:olive":  {R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
	"tab:cyan":   {R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
}

// ParseColor returns the color described by s, which is either
// an SVG color name such as "steelblue", a single letter code such as
// "k", a "tab:" palette name, or a hex code of the form #rgb, #rrggbb
// or #rrggbbaa.
func ParseColor(s string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := shortColors[name]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") {
		hex := name[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			hex += "ff"
		}
		if len(hex) == 8 {
			if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
				return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
			}
		}
	}
	return nil, fmt.Errorf("render: unknown color %q: %w", s, julesplot.ErrInvalidArgument)
}

// ParseColors parses each of s with ParseColor.
func ParseColors(s []string) ([]color.Color, error) {
	o := make([]color.Color, len(s))
	for i, ss := range s {
		c, err := ParseColor(ss)
		if err != nil {
			return nil, err
		}
		o[i] = c
	}
	return o, nil
}

// Dash patterns.
var (
	Solid   []vg.Length
	Dashed  = []vg.Length{vg.Points(4), vg.Points(2)}
	Dotted  = []vg.Length{vg.Points(1), vg.Points(1.5)}
	DashDot = []vg.Length{vg.Points(4), vg.Points(1.5), vg.Points(1), vg.Points(1.5)}
)

// ParseLineStyle returns the dash pattern for one of the line style
// codes "-", "--", ":" and "-." or their names "solid", "dashed",
// "dotted" and "dashdot".
func ParseLineStyle(s string) ([]vg.Length, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "-", "solid", "":
		return Solid, nil
	case "--", "dashed":
		return Dashed, nil
	case ":", "dotted":
		return Dotted, nil
	case "-.", "dashdot":
		return DashDot, nil
	}
	return nil, fmt.Errorf("render: unknown line style %q: %w", s, julesplot.ErrInvalidArgument)
}

// withAlpha returns c with its opacity scaled by a.
func withAlpha(c color.Color, a float64) color.Color {
	if c == nil {
		c = color.Black
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A)*a + 0.5)
	return n
}
