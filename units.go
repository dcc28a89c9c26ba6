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
	"time"

	"github.com/ctessum/unit"
)

// CarbonUnits are the units of carbon fluxes after normalization.
const CarbonUnits = "g C m-2"

// molCO2 is amount of carbon dioxide.
var molCO2 = unit.NewDimension("molCO2")

// carbonMolarMass is the mass of carbon per mole of CO2 [kg/mol].
var carbonMolarMass = unit.New(12.01e-3, unit.Dimensions{unit.MassDim: 1, molCO2: -1})

// kgPerM2 is the dimension of a carbon flux integrated over a time step.
var kgPerM2 = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2}

// TimeStep returns the interval between the first two time steps in d,
// truncated to whole seconds.
func TimeStep(d *Dataset) (time.Duration, error) {
	if len(d.Time) < 2 {
		return 0, fmt.Errorf("julesplot: time step of %s: %d time steps, need at least 2: %w",
			d.Path, len(d.Time), ErrInsufficientData)
	}
	return d.Time[1].Sub(d.Time[0]).Truncate(time.Second), nil
}

// ModelCarbonFactor returns the factor that converts a carbon flux in
// kg C m-2 s-1 to g C m-2 per time step of length dt.
func ModelCarbonFactor(dt time.Duration) (float64, error) {
	flux := unit.New(1, unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2, unit.TimeDim: -1})
	return gramsPerM2(unit.Mul(flux, stepLength(dt)))
}

// ObservedCarbonFactor returns the factor that converts a CO2 flux in
// μmol CO2 m-2 s-1 to g C m-2 per time step of length dt.
func ObservedCarbonFactor(dt time.Duration) (float64, error) {
	flux := unit.New(1e-6, unit.Dimensions{molCO2: 1, unit.LengthDim: -2, unit.TimeDim: -1})
	return gramsPerM2(unit.Mul(flux, carbonMolarMass, stepLength(dt)))
}

func stepLength(dt time.Duration) *unit.Unit {
	return unit.New(float64(dt/time.Second), unit.Second)
}

func gramsPerM2(u *unit.Unit) (float64, error) {
	if err := u.Check(kgPerM2); err != nil {
		return 0, fmt.Errorf("julesplot: carbon conversion: %v", err)
	}
	return u.Value() * 1000, nil
}

// NormalizeModelCarbon returns a copy of d where variable name, a model
// carbon flux in kg C m-2 s-1, has been converted to g C m-2 per time step.
func NormalizeModelCarbon(d *Dataset, name string) (*Dataset, error) {
	return normalizeCarbon(d, name, ModelCarbonFactor)
}

// NormalizeObservedCarbon returns a copy of d where variable name, an
// observed CO2 flux in μmol CO2 m-2 s-1, has been converted to
// g C m-2 per time step.
func NormalizeObservedCarbon(d *Dataset, name string) (*Dataset, error) {
	return normalizeCarbon(d, name, ObservedCarbonFactor)
}

func normalizeCarbon(d *Dataset, name string, factor func(time.Duration) (float64, error)) (*Dataset, error) {
	v, err := d.Var(name)
	if err != nil {
		return nil, err
	}
	dt, err := TimeStep(d)
	if err != nil {
		return nil, err
	}
	f, err := factor(dt)
	if err != nil {
		return nil, err
	}
	return d.withVar(name, &Variable{
		Dims:     v.Dims,
		Units:    CarbonUnits,
		LongName: v.LongName,
		Data:     v.Data.ScaleCopy(f),
	}), nil
}
