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
	"errors"
	"fmt"
	"testing"

	"github.com/Knetic/govaluate"
	"github.com/google/go-cmp/cmp"
)

func testResult() *Result {
	return &Result{
		Forcing:   []float64{10, 20, 30, 40},
		Aggregate: []float64{0, 1.5, 2.5, 3},
	}
}

func TestOutputterDefaults(t *testing.T) {
	o, err := NewOutputter(DefaultOutputVariables(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(o.Names(), []string{"AQIDay", "AQINight"}) {
		t.Errorf("names = %v", o.Names())
	}
	if !cmp.Equal(o.ModelVariables(), []string{"Observed"}) {
		t.Errorf("model variables = %v", o.ModelVariables())
	}
	out, err := o.Output([]float64{50, 100, 0, 10}, testResult())
	if err != nil {
		t.Fatal(err)
	}
	wantDay := []float64{60, 120, 0, 12}
	wantNight := []float64{40, 80, 0, 8}
	for i := range wantDay {
		if different(out["AQIDay"][i], wantDay[i], testTolerance) {
			t.Errorf("AQIDay[%d] = %g, want %g", i, out["AQIDay"][i], wantDay[i])
		}
		if different(out["AQINight"][i], wantNight[i], testTolerance) {
			t.Errorf("AQINight[%d] = %g, want %g", i, out["AQINight"][i], wantNight[i])
		}
	}
}

func TestOutputterExpressions(t *testing.T) {
	o, err := NewOutputter(map[string]string{
		"Scaled":    "IsDay * Observed * 1.2 + (1 - IsDay) * Observed * 0.8",
		"Bias":      "Simulated - Observed",
		"AbsBias":   "max(Bias, -Bias)",
		"Above":     "Simulated >= Forcing / 20",
		"Quadruple": "Double * 2",
		"Double":    "Step * 2",
		"Growth":    "exp(0) + min(Step, 1)",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := o.Output([]float64{2, 1, 4, 3}, testResult())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]float64{
		"Scaled":    {2.4, 0.8, 4.8, 2.4000000000000004},
		"Bias":      {-2, 0.5, -1.5, 0},
		"AbsBias":   {2, 0.5, 1.5, 0},
		"Above":     {0, 1, 1, 1},
		"Quadruple": {0, 4, 8, 12},
		"Double":    {0, 2, 4, 6},
		"Growth":    {1, 2, 2, 2},
	}
	for name, w := range want {
		for i, v := range w {
			if different(out[name][i], v, 1.e-10) {
				t.Errorf("%s[%d] = %g, want %g", name, i, out[name][i], v)
			}
		}
	}
}

func TestOutputterCustomFunction(t *testing.T) {
	o, err := NewOutputter(map[string]string{"Clamped": "clamp(Simulated)"},
		map[string]govaluate.ExpressionFunction{
			"clamp": func(arg ...interface{}) (interface{}, error) {
				if len(arg) != 1 {
					return nil, fmt.Errorf("got %d arguments for function 'clamp', but needs 1", len(arg))
				}
				v := arg[0].(float64)
				if v > 2 {
					return 2., nil
				}
				return v, nil
			},
		})
	if err != nil {
		t.Fatal(err)
	}
	out, err := o.Output(nil, testResult())
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(out["Clamped"], []float64{0, 1.5, 2, 2}) {
		t.Errorf("Clamped = %v", out["Clamped"])
	}
}

func TestOutputterErrors(t *testing.T) {
	for name, vars := range map[string]map[string]string{
		"empty":     {},
		"undefined": {"A": "Missing * 2"},
		"syntax":    {"A": "Observed * * 2"},
		"cycle":     {"A": "B + 1", "B": "A + 1"},
		"self":      {"A": "A + 1"},
		"reserved":  {"Observed": "Forcing"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewOutputter(vars, nil)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
	t.Run("observed length", func(t *testing.T) {
		o, err := NewOutputter(DefaultOutputVariables(), nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = o.Output([]float64{1, 2}, testResult())
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})
}
