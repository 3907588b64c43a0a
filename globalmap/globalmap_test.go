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

package globalmap

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

const testTolerance = 1.e-10

func TestNewLatLon(t *testing.T) {
	g, err := NewLatLon(DefaultLats, DefaultLons)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Lat) != 180 || len(g.Lon) != 360 {
		t.Fatalf("grid is %dx%d", len(g.Lat), len(g.Lon))
	}
	if g.Lat[0] != -90 || math.Abs(g.Lat[179]-90) > testTolerance {
		t.Errorf("latitude range = [%g, %g]", g.Lat[0], g.Lat[179])
	}
	if g.Lon[0] != -180 || math.Abs(g.Lon[359]-180) > testTolerance {
		t.Errorf("longitude range = [%g, %g]", g.Lon[0], g.Lon[359])
	}
	if _, err := NewLatLon(1, 10); err == nil {
		t.Error("expected an error for a single latitude")
	}
}

func TestBaseAndDayNight(t *testing.T) {
	g, err := NewLatLon(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	base := g.Base()
	want := mat.NewDense(3, 3, []float64{
		15, 35, 15,
		45, 65, 45,
		75, 95, 75,
	})
	if !mat.EqualApprox(base, want, testTolerance) {
		t.Errorf("base =\n%v\nwant\n%v", mat.Formatted(base), mat.Formatted(want))
	}
	day, night := DayNight(base, DayFactor, NightFactor)
	if v := day.At(1, 1); math.Abs(v-65*1.25) > testTolerance {
		t.Errorf("day = %g, want %g", v, 65*1.25)
	}
	if v := night.At(2, 1); math.Abs(v-95*0.75) > testTolerance {
		t.Errorf("night = %g, want %g", v, 95*0.75)
	}
}

func TestDominant(t *testing.T) {
	g, err := NewLatLon(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	fields := g.Composition()
	if len(fields) != len(Pollutants) {
		t.Fatalf("got %d fields, want %d", len(fields), len(Pollutants))
	}
	dom, err := Dominant(fields)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{
		{0, 1, 0},
		{0, 0, 0},
		{0, 1, 0},
	}
	if !cmp.Equal(dom, want) {
		t.Error(cmp.Diff(want, dom))
	}
	shares := Shares(dom, len(fields))
	if math.Abs(shares[0]-7./9) > testTolerance || math.Abs(shares[1]-2./9) > testTolerance {
		t.Errorf("shares = %v", shares)
	}
}

func TestDominantTies(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{1, 2})
	b := mat.NewDense(1, 2, []float64{1, 3})
	dom, err := Dominant([]*mat.Dense{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(dom, [][]int{{0, 1}}) {
		t.Errorf("dominant = %v", dom)
	}
	if _, err := Dominant([]*mat.Dense{a, mat.NewDense(2, 2, nil)}); err == nil {
		t.Error("expected an error for mismatched fields")
	}
}
