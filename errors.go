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
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a function is called with
	// arguments of the wrong shape or an unrecognized option token.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfiguration is returned when a combination of options
	// cannot produce the requested output.
	ErrConfiguration = errors.New("configuration error")

	// ErrInsufficientData is returned when a dataset does not hold
	// enough samples for the requested operation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoOverlap is returned when a group of datasets do not share
	// any time period.
	ErrNoOverlap = errors.New("datasets do not overlap in time")
)

// ParseError is returned when a time-of-day string cannot be decomposed
// into integer hour, minute and second fields.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("julesplot: parsing time of day %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
