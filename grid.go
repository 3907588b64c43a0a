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
	"math/rand/v2"

	"github.com/ctessum/sparse"
)

// Stream identifiers for the random sources derived from a seed.
const (
	emitterStream uint64 = 1
	sensorStream  uint64 = 2
)

// Coord is the location of a grid cell.
type Coord struct {
	Row, Col int
}

func (c Coord) String() string { return fmt.Sprintf("(%d, %d)", c.Row, c.Col) }

// EmitterSource returns the random source used to place emitters.
// It does not share state with SensorSource, so the emitter locations
// only depend on the seed.
func EmitterSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, emitterStream))
}

// SensorSource returns the random source used to place sensors.
func SensorSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, sensorStream))
}

// RandomCoords draws n coordinates uniformly from a rows x cols grid.
// The row of each coordinate is drawn before its column. Duplicates are
// allowed.
func RandomCoords(rng *rand.Rand, n, rows, cols int) []Coord {
	o := make([]Coord, n)
	for i := range o {
		o[i].Row = rng.IntN(rows)
		o[i].Col = rng.IntN(cols)
	}
	return o
}

// checkCoords makes sure all of the given coordinates are within the grid.
func checkCoords(kind string, coords []Coord, rows, cols int) error {
	for i, c := range coords {
		if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
			return fmt.Errorf("aqilab: %s %d at %v is outside of the %dx%d grid: %w",
				kind, i, c, rows, cols, ErrInvalidConfiguration)
		}
	}
	return nil
}

// NewGrid returns a grid of zeros.
func NewGrid(rows, cols int) *sparse.DenseArray {
	return sparse.ZerosDense(rows, cols)
}

// GridMass returns the total concentration in a grid.
func GridMass(g *sparse.DenseArray) float64 {
	return g.Sum()
}
