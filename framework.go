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
	"runtime"
	"sync"

	"github.com/ctessum/sparse"
)

// Model holds the current state of a simulation.
type Model struct {
	Config

	// Forcing holds one forcing value for each step.
	Forcing []float64

	// Emitters are the locations where forcing is injected.
	Emitters []Coord

	// Step is the index of the grid currently held in Cf.
	Step int

	// Ci is the working grid for the current step: the decayed previous
	// grid plus emissions, before diffusion.
	Ci *sparse.DenseArray

	// Cf is the most recent completed grid.
	Cf *sparse.DenseArray

	// History holds a copy of every completed grid. It is only
	// filled in by RecordHistory.
	History []*sparse.DenseArray

	// Aggregate holds the aggregated sensor value for every completed
	// grid. It is only filled in by SampleSensors.
	Aggregate []float64

	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true. Therefore, the simulation will not end until
	// one of the RunFuncs sets "Done" to true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are functions to be called in the given order
	// at the end of the simulation.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool
}

// DomainManipulator is a class of functions that operate on the entire model.
type DomainManipulator func(m *Model) error

// RowManipulator is a class of functions that operate on a single grid row.
// Functions of this type may be called concurrently for different rows, so
// they must only write to the given row.
type RowManipulator func(m *Model, row int)

// Init initializes the simulation by running m.InitFuncs.
func (m *Model) Init() error {
	for i, f := range m.InitFuncs {
		if err := f(m); err != nil {
			return fmt.Errorf("aqilab: problem initializing model (init function %d): %w", i, err)
		}
	}
	return nil
}

// Run carries out the simulation by running m.RunFuncs until m.Done is true,
// and then running m.CleanupFuncs.
func (m *Model) Run() error {
	for !m.Done {
		for _, f := range m.RunFuncs {
			if err := f(m); err != nil {
				return err
			}
		}
	}
	for _, f := range m.CleanupFuncs {
		if err := f(m); err != nil {
			return err
		}
	}
	return nil
}

// Calculations returns a function that concurrently runs a series of
// calculations on all of the grid rows. The calculations for a row
// run in the given order.
func Calculations(calculators ...RowManipulator) DomainManipulator {

	nprocs := runtime.GOMAXPROCS(0) // number of processors
	var wg sync.WaitGroup

	return func(m *Model) error {
		wg.Add(nprocs)
		for pp := 0; pp < nprocs; pp++ {
			go func(pp int) {
				for row := pp; row < m.GridRows; row += nprocs {
					for _, f := range calculators {
						f(m, row)
					}
				}
				wg.Done()
			}(pp)
		}
		wg.Wait()
		return nil
	}
}

// SetInitialState sets up the working grids. The first grid of every
// simulation contains only zeros.
func SetInitialState() DomainManipulator {
	return func(m *Model) error {
		if err := m.Config.Validate(); err != nil {
			return err
		}
		if err := checkCoords("emitter", m.Emitters, m.GridRows, m.GridCols); err != nil {
			return err
		}
		m.Ci = NewGrid(m.GridRows, m.GridCols)
		m.Cf = NewGrid(m.GridRows, m.GridCols)
		m.Step = 0
		m.Done = false
		m.History = nil
		m.Aggregate = nil
		return nil
	}
}
