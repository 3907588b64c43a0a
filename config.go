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
	"fmt"
	"math"
)

// Config holds the parameters of a simulation.
type Config struct {
	GridRows int // number of grid rows (H)
	GridCols int // number of grid columns (W)

	NumEmitters int // number of point emitters (K)
	NumSensors  int // number of sensors (M)

	Decay         float64 // fraction of concentration retained each step (d)
	EmissionScale float64 // forcing is divided by this before injection (c)
	SensorScale   float64 // mean sensor reading is multiplied by this (r)

	// Seed initializes the random streams used to place emitters and sensors.
	Seed uint64

	// KeepHistory specifies whether every grid in the sequence is kept.
	// If false, only the most recent grid is held while the simulation runs.
	KeepHistory bool
}

// DefaultConfig returns the configuration used when none is specified.
func DefaultConfig() Config {
	return Config{
		GridRows:      20,
		GridCols:      20,
		NumEmitters:   10,
		NumSensors:    6,
		Decay:         0.9,
		EmissionScale: 50,
		SensorScale:   40,
		Seed:          1,
	}
}

// Validate checks that c describes a runnable simulation.
func (c Config) Validate() error {
	if c.GridRows <= 0 || c.GridCols <= 0 {
		return fmt.Errorf("aqilab: grid size must be positive but is %dx%d: %w",
			c.GridRows, c.GridCols, ErrInvalidConfiguration)
	}
	if c.NumEmitters < 0 {
		return fmt.Errorf("aqilab: number of emitters is %d but must be >= 0: %w",
			c.NumEmitters, ErrInvalidConfiguration)
	}
	if c.NumSensors <= 0 {
		return fmt.Errorf("aqilab: number of sensors is %d but must be > 0: %w",
			c.NumSensors, ErrInvalidConfiguration)
	}
	vars := []float64{c.Decay, c.EmissionScale, c.SensorScale}
	names := []string{"decay", "emission scale", "sensor scale"}
	for i, v := range vars {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("aqilab: %s is %g: %w", names[i], v, ErrInvalidConfiguration)
		}
	}
	if c.EmissionScale == 0 {
		return fmt.Errorf("aqilab: emission scale must not be zero: %w", ErrInvalidConfiguration)
	}
	return nil
}

// cells returns the number of cells in a grid.
func (c Config) cells() int { return c.GridRows * c.GridCols }
