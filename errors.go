/*
Copyright © 2024 the AQILab authors.
This file is part of AQILab.

AQILab is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AQILab is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AQILab.  If not, see <http://www.gnu.org/licenses/>.
*/

package aqilab

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned when the forcing series or another input
	// series is empty or holds values the model cannot use.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration is returned when a model parameter is out of
	// range.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// CheckForcing makes sure that a forcing series can drive a simulation:
// it must be non-empty and every value must be finite and non-negative.
func CheckForcing(forcing []float64) error {
	if len(forcing) == 0 {
		return fmt.Errorf("aqilab: forcing series is empty: %w", ErrInvalidInput)
	}
	for i, f := range forcing {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("aqilab: forcing value %d is %g: %w", i, f, ErrInvalidInput)
		}
		if f < 0 {
			return fmt.Errorf("aqilab: forcing value %d is negative (%g): %w", i, f, ErrInvalidInput)
		}
	}
	return nil
}
