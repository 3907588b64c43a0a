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

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
)

// SensorNetwork is a set of fixed sensors whose mean reading is rescaled
// into an index comparable with observations.
type SensorNetwork struct {
	Sensors []Coord
	Scale   float64 // multiplier applied to the mean reading (r)
}

// NewSensorNetwork returns a network with the given sensors after checking
// that there is at least one sensor and that all of them are within
// a rows x cols grid.
func NewSensorNetwork(sensors []Coord, scale float64, rows, cols int) (*SensorNetwork, error) {
	if len(sensors) == 0 {
		return nil, fmt.Errorf("aqilab: a sensor network needs at least one sensor: %w",
			ErrInvalidConfiguration)
	}
	if err := checkCoords("sensor", sensors, rows, cols); err != nil {
		return nil, err
	}
	return &SensorNetwork{Sensors: sensors, Scale: scale}, nil
}

// Readings returns the value of g at each sensor.
func (n *SensorNetwork) Readings(g *sparse.DenseArray) []float64 {
	o := make([]float64, len(n.Sensors))
	for i, s := range n.Sensors {
		o[i] = g.Get(s.Row, s.Col)
	}
	return o
}

// Sample returns the mean sensor reading in g multiplied by the network scale.
func (n *SensorNetwork) Sample(g *sparse.DenseArray) float64 {
	return stat.Mean(n.Readings(g), nil) * n.Scale
}

// Aggregate samples each grid in a sequence. The result has the same
// length as grids.
func (n *SensorNetwork) Aggregate(grids []*sparse.DenseArray) []float64 {
	o := make([]float64, len(grids))
	for t, g := range grids {
		o[t] = n.Sample(g)
	}
	return o
}

// SampleSensors returns a function that samples the completed grid and
// appends the result to m.Aggregate. It allows the aggregate series to be
// built without keeping every grid in memory.
func SampleSensors(n *SensorNetwork) DomainManipulator {
	return func(m *Model) error {
		m.Aggregate = append(m.Aggregate, n.Sample(m.Cf))
		return nil
	}
}
