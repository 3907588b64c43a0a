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

// Package globalmap calculates heuristic air quality fields on a global
// latitude-longitude grid.
package globalmap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Default grid dimensions and day and night factors.
const (
	DefaultLats = 180
	DefaultLons = 360

	DayFactor   = 1.25
	NightFactor = 0.75
)

// Pollutants are the names of the composition fields, in the order
// returned by Composition.
var Pollutants = []string{"PM2.5", "NO2", "O3", "CO", "SO2"}

// LatLon is a regular global grid. Rows of the fields correspond to
// latitudes and columns to longitudes.
type LatLon struct {
	Lat, Lon []float64 // degrees
}

// NewLatLon returns a grid with nLat latitudes evenly spaced from -90 to 90
// and nLon longitudes evenly spaced from -180 to 180, inclusive.
func NewLatLon(nLat, nLon int) (*LatLon, error) {
	if nLat < 2 || nLon < 2 {
		return nil, fmt.Errorf("globalmap: grid must have at least 2 latitudes and longitudes but has %dx%d", nLat, nLon)
	}
	return &LatLon{
		Lat: floats.Span(make([]float64, nLat), -90, 90),
		Lon: floats.Span(make([]float64, nLon), -180, 180),
	}, nil
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// field returns a field calculated with f at every grid point.
func (g *LatLon) field(f func(lat, lon float64) float64) *mat.Dense {
	o := mat.NewDense(len(g.Lat), len(g.Lon), nil)
	for i, lat := range g.Lat {
		for j, lon := range g.Lon {
			o.Set(i, j, f(lat, lon))
		}
	}
	return o
}

// Base returns the heuristic base air quality index:
// 45 + 30 sin(lat) + 20 cos(lon/2).
func (g *LatLon) Base() *mat.Dense {
	return g.field(func(lat, lon float64) float64 {
		return 45 + 30*math.Sin(rad(lat)) + 20*math.Cos(rad(lon/2))
	})
}

// DayNight returns base scaled by the day and night factors.
func DayNight(base mat.Matrix, dayFactor, nightFactor float64) (day, night *mat.Dense) {
	day, night = new(mat.Dense), new(mat.Dense)
	day.Scale(dayFactor, base)
	night.Scale(nightFactor, base)
	return day, night
}

// Composition returns synthetic concentration fields for each of
// Pollutants.
func (g *LatLon) Composition() []*mat.Dense {
	return []*mat.Dense{
		g.field(func(lat, _ float64) float64 { return 40 + 30*math.Exp(-math.Pow(lat/25, 2)) }),
		g.field(func(_, lon float64) float64 { return 20 + 25*math.Cos(rad(lon)) }),
		g.field(func(lat, _ float64) float64 { return 15 + 20*math.Sin(rad(lat)) }),
		g.field(func(lat, _ float64) float64 { return 10 + 15*math.Cos(rad(lat/2)) }),
		g.field(func(_, lon float64) float64 { return 8 + 12*math.Sin(rad(lon/3)) }),
	}
}

// Dominant returns, for each grid point, the index of the field with the
// largest value. Ties go to the earlier field.
func Dominant(fields []*mat.Dense) ([][]int, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("globalmap: no fields")
	}
	r, c := fields[0].Dims()
	for i, f := range fields[1:] {
		if rr, cc := f.Dims(); rr != r || cc != c {
			return nil, fmt.Errorf("globalmap: field %d is %dx%d but field 0 is %dx%d", i+1, rr, cc, r, c)
		}
	}
	o := make([][]int, r)
	vals := make([]float64, len(fields))
	for i := range o {
		o[i] = make([]int, c)
		for j := range o[i] {
			for k, f := range fields {
				vals[k] = f.At(i, j)
			}
			o[i][j] = floats.MaxIdx(vals)
		}
	}
	return o, nil
}

// Shares returns the fraction of grid points at which each field dominates.
func Shares(dominant [][]int, nFields int) []float64 {
	o := make([]float64, nFields)
	var n float64
	for _, row := range dominant {
		for _, d := range row {
			o[d]++
			n++
		}
	}
	if n > 0 {
		floats.Scale(1/n, o)
	}
	return o
}
