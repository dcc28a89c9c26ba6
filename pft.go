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
	"github.com/ctessum/sparse"
)

// MeanPFT returns a copy of d where variable name has been averaged
// over the plant functional type dimension. Missing values are ignored.
// If the variable does not have a plant functional type dimension, d is
// returned unchanged.
func MeanPFT(d *Dataset, name string) (*Dataset, error) {
	return reducePFT(d, name, Mean)
}

// SumPFT is like MeanPFT but sums over plant functional types.
func SumPFT(d *Dataset, name string) (*Dataset, error) {
	return reducePFT(d, name, Total)
}

func reducePFT(d *Dataset, name string, r Reducer) (*Dataset, error) {
	v, err := d.Var(name)
	if err != nil {
		return nil, err
	}
	axis := v.dimIndex(PFTDim)
	if axis < 0 {
		return d, nil
	}
	dims := make([]string, 0, len(v.Dims)-1)
	dims = append(dims, v.Dims[:axis]...)
	dims = append(dims, v.Dims[axis+1:]...)
	return d.withVar(name, &Variable{
		Dims:     dims,
		Units:    v.Units,
		LongName: v.LongName,
		Data:     reduceAxis(v.Data, axis, r),
	}), nil
}

// reduceAxis reduces array a along the given axis.
func reduceAxis(a *sparse.DenseArray, axis int, r Reducer) *sparse.DenseArray {
	outer, inner := 1, 1
	for _, l := range a.Shape[:axis] {
		outer *= l
	}
	for _, l := range a.Shape[axis+1:] {
		inner *= l
	}
	n := a.Shape[axis]

	shape := make([]int, 0, len(a.Shape))
	shape = append(shape, a.Shape[:axis]...)
	shape = append(shape, a.Shape[axis+1:]...)
	if len(shape) == 0 {
		shape = []int{1}
	}
	out := sparse.ZerosDense(shape...)
	col := make([]float64, n)
	buf := make([]float64, 0, n)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			for k := 0; k < n; k++ {
				col[k] = a.Elements[(o*n+k)*inner+i]
			}
			out.Elements[o*inner+i] = r.reduce(finite(buf[:0], col))
		}
	}
	return out
}
