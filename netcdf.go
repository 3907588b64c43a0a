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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// WriteNetCDF writes r to netcdf file w. The concentration variable holds
// every grid if the history was kept and only the final grid otherwise.
func WriteNetCDF(w *os.File, r *Result) error {
	frames := r.History
	if len(frames) == 0 {
		frames = []*sparse.DenseArray{r.Final}
	}
	cfg := r.Config
	nt := len(r.Aggregate)

	dims := []string{"frame", "time", "y", "x", "sensor"}
	lengths := []int{len(frames), nt, cfg.GridRows, cfg.GridCols, len(r.Sensors)}
	if len(r.Emitters) > 0 {
		// A zero length would make this the record dimension.
		dims = append(dims, "emitter")
		lengths = append(lengths, len(r.Emitters))
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", "AQILab simulation output")
	h.AddAttribute("", "aqilab_version", Version)
	h.AddAttribute("", "decay", []float64{cfg.Decay})
	h.AddAttribute("", "emission_scale", []float64{cfg.EmissionScale})
	h.AddAttribute("", "sensor_scale", []float64{cfg.SensorScale})
	h.AddAttribute("", "seed", []int32{int32(cfg.Seed)})

	type variable struct {
		name, description, units string
		dims                     []string
		data                     interface{}
	}
	conc := make([]float64, 0, len(frames)*cfg.cells())
	for _, g := range frames {
		conc = append(conc, g.Elements...)
	}
	vars := []variable{
		{"Concentration", "Pollutant concentration at the end of each step", "arbitrary", []string{"frame", "y", "x"}, conc},
		{"Forcing", "Forcing value at each step", "AQI", []string{"time"}, r.Forcing[:nt]},
		{"SimulatedAQI", "Rescaled mean sensor reading at each step", "AQI", []string{"time"}, r.Aggregate},
	}
	sRow, sCol := coordColumns(r.Sensors)
	vars = append(vars,
		variable{"SensorRow", "Sensor grid row", "cells", []string{"sensor"}, sRow},
		variable{"SensorCol", "Sensor grid column", "cells", []string{"sensor"}, sCol},
	)
	if len(r.Emitters) > 0 {
		eRow, eCol := coordColumns(r.Emitters)
		vars = append(vars,
			variable{"EmitterRow", "Emitter grid row", "cells", []string{"emitter"}, eRow},
			variable{"EmitterCol", "Emitter grid column", "cells", []string{"emitter"}, eCol},
		)
	}

	for _, v := range vars {
		switch v.data.(type) {
		case []int32:
			h.AddVariable(v.name, v.dims, []int32{0})
		default:
			h.AddVariable(v.name, v.dims, []float64{0.})
		}
		h.AddAttribute(v.name, "description", v.description)
		h.AddAttribute(v.name, "units", v.units)
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("aqilab: creating netcdf file: %v", err)
	}

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("aqilab: creating netcdf file: %v", err)
	}
	for _, v := range vars {
		end := f.Header.Lengths(v.name)
		start := make([]int, len(end))
		wr := f.Writer(v.name, start, end)
		if _, err := wr.Write(v.data); err != nil {
			return fmt.Errorf("aqilab: writing variable %s to netcdf file: %v", v.name, err)
		}
	}
	return nil
}

func coordColumns(c []Coord) (rows, cols []int32) {
	rows = make([]int32, len(c))
	cols = make([]int32, len(c))
	for i, cc := range c {
		rows[i] = int32(cc.Row)
		cols[i] = int32(cc.Col)
	}
	return rows, cols
}

// ReadNetCDFVar reads the variable with the given name from a file
// created by WriteNetCDF. Integer variables are converted to float64.
func ReadNetCDFVar(rw cdf.ReaderWriterAt, name string) (*sparse.DenseArray, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("aqilab: opening netcdf file: %v", err)
	}
	var found bool
	for _, v := range f.Header.Variables() {
		if v == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("aqilab: netcdf file has no variable '%s'", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err = r.Read(buf); err != nil {
		return nil, fmt.Errorf("aqilab: reading netcdf variable %s: %v", name, err)
	}
	o := sparse.ZerosDense(f.Header.Lengths(name)...)
	switch data := buf.(type) {
	case []float64:
		copy(o.Elements, data)
	case []int32:
		for i, v := range data {
			o.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("aqilab: netcdf variable %s has unsupported type %T", name, buf)
	}
	return o, nil
}
