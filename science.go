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

// AdvanceStep moves the simulation forward by one step. It must run
// before the science functions of each step.
func AdvanceStep() DomainManipulator {
	return func(m *Model) error {
		m.Step++
		return nil
	}
}

// Decay returns a function that multiplies the previous grid by the decay
// factor and stores the result in the working grid.
func Decay() RowManipulator {
	return func(m *Model, row int) {
		i0 := row * m.GridCols
		ci := m.Ci.Elements[i0 : i0+m.GridCols]
		cf := m.Cf.Elements[i0 : i0+m.GridCols]
		for j, v := range cf {
			ci[j] = v * m.Decay
		}
	}
}

// InjectEmissions adds the forcing of the current step, divided by the
// emission scale, to the working grid at every emitter. Emitters at the
// same location add up.
func InjectEmissions() DomainManipulator {
	return func(m *Model) error {
		strength := m.Forcing[m.Step] / m.EmissionScale
		for _, e := range m.Emitters {
			m.Ci.AddVal(strength, e.Row, e.Col)
		}
		return nil
	}
}

// Diffuse returns a function that replaces each cell of the completed grid
// with the average of its four neighbors in the working grid. The grid wraps
// around at its edges.
func Diffuse() RowManipulator {
	return func(m *Model, row int) {
		rows, cols := m.GridRows, m.GridCols
		up := (row - 1 + rows) % rows
		down := (row + 1) % rows
		ci := m.Ci.Elements
		cf := m.Cf.Elements[row*cols : (row+1)*cols]
		for j := range cf {
			left := (j - 1 + cols) % cols
			right := (j + 1) % cols
			cf[j] = (ci[up*cols+j] + ci[down*cols+j] +
				ci[row*cols+left] + ci[row*cols+right]) / 4
		}
	}
}

// StepLimit sets the Done flag once the forcing series is used up.
// It should be included in both InitFuncs and RunFuncs so that a simulation
// with a single forcing value runs no steps.
func StepLimit() DomainManipulator {
	return func(m *Model) error {
		if m.Step >= len(m.Forcing)-1 {
			m.Done = true
		}
		return nil
	}
}

// RecordHistory saves a copy of the completed grid.
func RecordHistory() DomainManipulator {
	return func(m *Model) error {
		m.History = append(m.History, m.Cf.Copy())
		return nil
	}
}
