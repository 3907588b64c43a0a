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

package aqilabutil

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/aqilab"
)

func TestCheckOutputVars(t *testing.T) {
	if _, err := checkOutputVars(nil); err == nil {
		t.Error("expected an error for no output variables")
	}
	vars, err := checkOutputVars(map[string]string{"A": "Observed *\r\n2", "B": "Simulated\n+ 1"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"A": "Observed * 2", "B": "Simulated + 1"}
	if !reflect.DeepEqual(vars, want) {
		t.Errorf("%v != %v", vars, want)
	}
}

func TestToIntSliceE(t *testing.T) {
	for _, test := range []struct {
		in   interface{}
		want []int
	}{
		{"[4,5]", []int{4, 5}},
		{"4,5", []int{4, 5}},
		{[]int{4, 5}, []int{4, 5}},
		{[]interface{}{int64(4), int64(5)}, []int{4, 5}},
	} {
		got, err := toIntSliceE(test.in)
		if err != nil {
			t.Errorf("%#v: %v", test.in, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%#v: %v != %v", test.in, got, test.want)
		}
	}
	if _, err := toIntSliceE("[a,b]"); err == nil {
		t.Error("expected an error")
	}
}

func TestGetStringMapString(t *testing.T) {
	v := viper.New()
	v.Set("json", `{"A":"Observed"}`)
	v.Set("map", map[string]interface{}{"A": "Observed"})
	v.Set("bad", `{"A":`)
	want := map[string]string{"A": "Observed"}
	for _, name := range []string{"json", "map"} {
		got, err := GetStringMapString(name, v)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: %v != %v", name, got, want)
		}
	}
	if _, err := GetStringMapString("bad", v); err == nil {
		t.Error("expected an error")
	}
}

func gridViper() *viper.Viper {
	v := viper.New()
	v.Set("Grid.Size", []int{4, 5})
	v.Set("Grid.NumEmitters", 2)
	v.Set("Grid.NumSensors", 3)
	v.Set("Grid.Decay", 0.8)
	v.Set("Grid.EmissionScale", 10.)
	v.Set("Grid.SensorScale", 2.)
	v.Set("Grid.Seed", 7)
	v.Set("Grid.KeepHistory", true)
	return v
}

func TestGridConfig(t *testing.T) {
	cfg, err := GridConfig(gridViper())
	if err != nil {
		t.Fatal(err)
	}
	want := aqilab.Config{
		GridRows:      4,
		GridCols:      5,
		NumEmitters:   2,
		NumSensors:    3,
		Decay:         0.8,
		EmissionScale: 10,
		SensorScale:   2,
		Seed:          7,
		KeepHistory:   true,
	}
	if cfg != want {
		t.Errorf("%+v != %+v", cfg, want)
	}
}

func TestGridConfigInvalid(t *testing.T) {
	for name, set := range map[string]func(*viper.Viper){
		"size length": func(v *viper.Viper) { v.Set("Grid.Size", []int{4}) },
		"zero rows":   func(v *viper.Viper) { v.Set("Grid.Size", []int{0, 4}) },
		"no sensors":  func(v *viper.Viper) { v.Set("Grid.NumSensors", 0) },
		"zero c":      func(v *viper.Viper) { v.Set("Grid.EmissionScale", 0.) },
		"seed":        func(v *viper.Viper) { v.Set("Grid.Seed", -1) },
	} {
		t.Run(name, func(t *testing.T) {
			v := gridViper()
			set(v)
			_, err := GridConfig(v)
			if !errors.Is(err, aqilab.ErrInvalidConfiguration) {
				t.Errorf("got %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestCheckLogFile(t *testing.T) {
	if f := checkLogFile("", "out"); f != "out/aqilab.log" {
		t.Errorf("got %s", f)
	}
	if f := checkLogFile("x.log", "out"); f != "x.log" {
		t.Errorf("got %s", f)
	}
}
