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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/aqilab"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// expandPath expands any environment variables in a file path.
func expandPath(p string) string { return os.ExpandEnv(p) }

// checkOutputDir makes sure that the output directory is specified,
// expands any environment variables, and creates the directory if it
// doesn't exist.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf(`you need to specify an output directory configuration variable (for example: OutputDir="output")`)
	}
	dir = os.ExpandEnv(dir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return dir, fmt.Errorf("aqilab: creating OutputDir: %v", err)
	}
	return dir, nil
}

// checkObservations makes sure that an observations file is specified and
// expands any environment variables.
func checkObservations(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an observations file configuration variable (for example: Observations="aqi.csv")`)
	}
	return os.ExpandEnv(f), nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputDir string) string {
	if logFile == "" {
		return filepath.Join(outputDir, "aqilab.log")
	}
	return os.ExpandEnv(logFile)
}

// GridConfig unmarshals a viper configuration for a grid simulation.
func GridConfig(cfg *viper.Viper) (aqilab.Config, error) {
	var c aqilab.Config
	size, err := toIntSliceE(cfg.Get("Grid.Size"))
	if err != nil {
		return c, fmt.Errorf("Grid.Size: %v", err)
	}
	if len(size) != 2 {
		return c, fmt.Errorf("parsing grid configuration: Grid.Size must have 2 values (rows, columns) but has %d: %w",
			len(size), aqilab.ErrInvalidConfiguration)
	}
	seed := cfg.GetInt("Grid.Seed")
	if seed < 0 {
		return c, fmt.Errorf("parsing grid configuration: Grid.Seed=%d but should be >= 0: %w",
			seed, aqilab.ErrInvalidConfiguration)
	}
	c = aqilab.Config{
		GridRows:      size[0],
		GridCols:      size[1],
		NumEmitters:   cfg.GetInt("Grid.NumEmitters"),
		NumSensors:    cfg.GetInt("Grid.NumSensors"),
		Decay:         cfg.GetFloat64("Grid.Decay"),
		EmissionScale: cfg.GetFloat64("Grid.EmissionScale"),
		SensorScale:   cfg.GetFloat64("Grid.SensorScale"),
		Seed:          uint64(seed),
		KeepHistory:   cfg.GetBool("Grid.KeepHistory"),
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// toIntSliceE converts a configuration value to a slice of ints. Values
// set from the command line are strings like "[20,20]" or "20,20".
func toIntSliceE(s interface{}) ([]int, error) {
	str, ok := s.(string)
	if !ok {
		return cast.ToIntSliceE(s)
	}
	str = strings.TrimSpace(str)
	if !strings.HasPrefix(str, "[") {
		str = "[" + str + "]"
	}
	var o []int
	if err := json.Unmarshal([]byte(str), &o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if v == "" {
			return make(map[string]string), nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("aqilab: parsing configuration variable %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("aqilab: invalid type for configuration variable %s: %#v", varName, i)
	}
}
