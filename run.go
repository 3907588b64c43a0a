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
	"time"

	"github.com/ctessum/sparse"
)

// SimulationStatus holds information about the progress of a simulation.
type SimulationStatus struct {
	Step, Steps  int
	Mass         float64 // total concentration in the completed grid
	Walltime     time.Duration
	StepWalltime time.Duration
}

func (s *SimulationStatus) String() string {
	return fmt.Sprintf("Step %-4d of %-4d  walltime=%6.3gs  Δwalltime=%4.2gs  mass=%.4g",
		s.Step, s.Steps, s.Walltime.Seconds(), s.StepWalltime.Seconds(), s.Mass)
}

// Log sends simulation status messages to c. If c is nil, no messages
// are sent.
func Log(c chan *SimulationStatus) DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()

	return func(m *Model) error {
		if c == nil {
			return nil
		}
		c <- &SimulationStatus{
			Step:         m.Step,
			Steps:        len(m.Forcing) - 1,
			Mass:         GridMass(m.Cf),
			Walltime:     time.Since(startTime),
			StepWalltime: time.Since(timeStepTime),
		}
		timeStepTime = time.Now()
		return nil
	}
}

// StepFuncs returns the functions that advance the grid by one step:
// decay, then emission injection, then diffusion.
func StepFuncs() []DomainManipulator {
	return []DomainManipulator{
		AdvanceStep(),
		Calculations(Decay()),
		InjectEmissions(),
		Calculations(Diffuse()),
	}
}

// NewModel sets up a simulation of forcing with the given emitters.
// If net is not nil, its aggregate is recorded at every step. If cfg.KeepHistory
// is true, every grid is recorded. Status messages are sent to c if it is not nil.
func NewModel(cfg Config, forcing []float64, emitters []Coord, net *SensorNetwork, c chan *SimulationStatus) *Model {
	initFuncs := []DomainManipulator{SetInitialState()}
	runFuncs := StepFuncs()
	if cfg.KeepHistory {
		initFuncs = append(initFuncs, RecordHistory())
		runFuncs = append(runFuncs, RecordHistory())
	}
	if net != nil {
		initFuncs = append(initFuncs, SampleSensors(net))
		runFuncs = append(runFuncs, SampleSensors(net))
	}
	initFuncs = append(initFuncs, StepLimit())
	runFuncs = append(runFuncs, Log(c), StepLimit())

	return &Model{
		Config:    cfg,
		Forcing:   forcing,
		Emitters:  emitters,
		InitFuncs: initFuncs,
		RunFuncs:  runFuncs,
	}
}

// Evolve runs the grid evolution for forcing with the given emitters and
// returns every grid in the sequence. The first grid contains only zeros.
// An empty forcing series results in an empty sequence.
func Evolve(cfg Config, forcing []float64, emitters []Coord) ([]*sparse.DenseArray, error) {
	cfg.NumEmitters = len(emitters)
	if len(forcing) == 0 {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return []*sparse.DenseArray{}, nil
	}
	if err := CheckForcing(forcing); err != nil {
		return nil, err
	}
	cfg.KeepHistory = true
	m := NewModel(cfg, forcing, emitters, nil, nil)
	if err := m.Init(); err != nil {
		return nil, err
	}
	if err := m.Run(); err != nil {
		return nil, err
	}
	return m.History, nil
}

// Result holds the output of a simulation.
type Result struct {
	Config   Config
	Forcing  []float64
	Emitters []Coord
	Sensors  []Coord

	// Final is the last grid in the sequence.
	Final *sparse.DenseArray

	// History holds every grid in the sequence if Config.KeepHistory
	// is true and is nil otherwise.
	History []*sparse.DenseArray

	// Aggregate holds the rescaled mean sensor reading at each step.
	Aggregate []float64
}

// Steps returns the number of grids in the simulated sequence.
func (r *Result) Steps() int { return len(r.Aggregate) }

// Simulate places cfg.NumEmitters emitters and cfg.NumSensors sensors using
// random sources derived from cfg.Seed and then runs a simulation of forcing.
func Simulate(cfg Config, forcing []float64, c chan *SimulationStatus) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	emitters := RandomCoords(EmitterSource(cfg.Seed), cfg.NumEmitters, cfg.GridRows, cfg.GridCols)
	sensors := RandomCoords(SensorSource(cfg.Seed), cfg.NumSensors, cfg.GridRows, cfg.GridCols)
	return SimulateWith(cfg, forcing, emitters, sensors, c)
}

// SimulateWith runs a simulation of forcing with the given emitter and
// sensor locations. cfg.NumEmitters and cfg.NumSensors are ignored.
func SimulateWith(cfg Config, forcing []float64, emitters, sensors []Coord, c chan *SimulationStatus) (*Result, error) {
	cfg.NumEmitters = len(emitters)
	cfg.NumSensors = len(sensors)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckForcing(forcing); err != nil {
		return nil, err
	}
	net, err := NewSensorNetwork(sensors, cfg.SensorScale, cfg.GridRows, cfg.GridCols)
	if err != nil {
		return nil, err
	}
	m := NewModel(cfg, forcing, emitters, net, c)
	if err := m.Init(); err != nil {
		return nil, err
	}
	if err := m.Run(); err != nil {
		return nil, err
	}
	return &Result{
		Config:    cfg,
		Forcing:   forcing,
		Emitters:  emitters,
		Sensors:   sensors,
		Final:     m.Cf,
		History:   m.History,
		Aggregate: m.Aggregate,
	}, nil
}
