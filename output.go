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
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
)

// Names of the per-step variables that can be used in output expressions.
const (
	ObservedVar  = "Observed"  // the observed index
	ForcingVar   = "Forcing"   // the forcing value
	SimulatedVar = "Simulated" // the aggregated sensor value
	StepVar      = "Step"      // the step index, starting at zero
	IsDayVar     = "IsDay"     // 1 for even steps and 0 for odd steps
)

var modelVars = map[string]bool{
	ObservedVar:  true,
	ForcingVar:   true,
	SimulatedVar: true,
	StepVar:      true,
	IsDayVar:     true,
}

// DefaultOutputVariables are the derived series calculated when none
// are specified: the observed index scaled for day and night.
func DefaultOutputVariables() map[string]string {
	return map[string]string{
		"AQIDay":   "Observed * 1.2",
		"AQINight": "Observed * 0.8",
	}
}

// Outputter calculates derived time series from simulation results.
//
// outputVariables maps the names of the series to be calculated to
// expressions that define how they should be calculated. Expressions can
// use the per-step model variables (Observed, Forcing, Simulated, Step,
// and IsDay), the names of other output variables, and functions.
type Outputter struct {
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression

	// order is the order in which the variables must be evaluated so that
	// each variable is calculated after the variables it depends on.
	order []string

	// modelVariables are the model variables needed by the expressions.
	modelVariables []string
}

// NewOutputter initializes a new Outputter and adds a set of default
// functions:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'max(a, b)' and 'min(a, b)' which return the larger and smaller argument.
func NewOutputter(outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("aqilab: there are no output variables specified: %w", ErrInvalidConfiguration)
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("aqilab: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return math.Exp(arg[0].(float64)), nil
		},
		"max": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("aqilab: got %d arguments for function 'max', but needs 2", len(arg))
			}
			return math.Max(arg[0].(float64), arg[1].(float64)), nil
		},
		"min": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("aqilab: got %d arguments for function 'min', but needs 2", len(arg))
			}
			return math.Min(arg[0].(float64), arg[1].(float64)), nil
		},
	}
	for k, v := range outputFunctions {
		funcs[k] = v
	}

	o := &Outputter{
		outputVariables: make(map[string]string, len(outputVariables)),
		outputFunctions: funcs,
		expressions:     make(map[string]*govaluate.EvaluableExpression, len(outputVariables)),
	}
	for k, v := range outputVariables {
		if modelVars[k] {
			return nil, fmt.Errorf("aqilab: output variable name '%s' is reserved: %w", k, ErrInvalidConfiguration)
		}
		v = strings.Replace(v, "\r\n", " ", -1)
		o.outputVariables[k] = strings.Replace(v, "\n", " ", -1)
	}
	if err := o.parse(); err != nil {
		return nil, err
	}
	return o, nil
}

// parse compiles the expressions, checks that every variable they refer to
// is defined, and determines the evaluation order.
func (o *Outputter) parse() error {
	deps := make(map[string][]string)
	needed := make(map[string]bool)
	for _, name := range o.Names() {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(o.outputVariables[name], o.outputFunctions)
		if err != nil {
			return fmt.Errorf("aqilab: parsing output variable '%s': %v: %w", name, err, ErrInvalidConfiguration)
		}
		o.expressions[name] = expression
		for _, v := range removeDuplicates(expression.Vars()) {
			switch {
			case modelVars[v]:
				needed[v] = true
			case o.outputVariables[v] != "":
				deps[name] = append(deps[name], v)
			default:
				return fmt.Errorf("aqilab: undefined variable name '%s' in output variable '%s': %w",
					v, name, ErrInvalidConfiguration)
			}
		}
	}
	for v := range needed {
		o.modelVariables = append(o.modelVariables, v)
	}
	sort.Strings(o.modelVariables)

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int)
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("aqilab: output variable '%s' depends on itself: %w", name, ErrInvalidConfiguration)
		case visited:
			return nil
		}
		state[name] = visiting
		for _, d := range deps[name] {
			if err := visit(d); err != nil {
				return err
			}
		}
		state[name] = visited
		o.order = append(o.order, name)
		return nil
	}
	for _, name := range o.Names() {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the sorted names of the output variables.
func (o *Outputter) Names() []string {
	names := make([]string, 0, len(o.outputVariables))
	for k := range o.outputVariables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ModelVariables returns the model variables required by the expressions.
func (o *Outputter) ModelVariables() []string { return o.modelVariables }

// Output calculates the output variables at every step of r. observed
// may be nil if none of the expressions use it; otherwise it must have one
// value per step.
func (o *Outputter) Output(observed []float64, r *Result) (map[string][]float64, error) {
	n := len(r.Aggregate)
	for _, v := range o.modelVariables {
		if v == ObservedVar && len(observed) != n {
			return nil, fmt.Errorf("aqilab: the observed series has %d values but the simulation has %d steps: %w",
				len(observed), n, ErrInvalidInput)
		}
	}
	out := make(map[string][]float64, len(o.order))
	for _, name := range o.order {
		out[name] = make([]float64, n)
	}
	params := make(map[string]interface{}, len(modelVars)+len(o.order))
	for t := 0; t < n; t++ {
		if observed != nil && t < len(observed) {
			params[ObservedVar] = observed[t]
		}
		params[ForcingVar] = r.Forcing[t]
		params[SimulatedVar] = r.Aggregate[t]
		params[StepVar] = float64(t)
		params[IsDayVar] = 0.
		if t%2 == 0 {
			params[IsDayVar] = 1.
		}
		for _, name := range o.order {
			v, err := o.expressions[name].Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("aqilab: evaluating output variable '%s' at step %d: %v", name, t, err)
			}
			f, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("aqilab: output variable '%s': %v", name, err)
			}
			params[name] = f
			out[name][t] = f
		}
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch vv := v.(type) {
	case float64:
		return vv, nil
	case bool:
		if vv {
			return 1, nil
		}
		return 0, nil
	default:
		return math.NaN(), fmt.Errorf("expression result %v has unsupported type %T", v, v)
	}
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]bool)
	for _, val := range s {
		if !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}
	return result
}
