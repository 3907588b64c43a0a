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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aqilab"
	"github.com/spatialmodel/aqilab/globalmap"
	"github.com/spatialmodel/aqilab/obs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	d := aqilab.DefaultConfig()

	// Options are the configuration options available to AQILab.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Verbose",
			usage: `
              Verbose specifies whether debugging messages should be logged.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Grid.Size",
			usage: `
              Grid.Size specifies the number of rows and columns in the
              simulation grid.`,
			defaultVal: []int{d.GridRows, d.GridCols},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.NumEmitters",
			usage: `
              Grid.NumEmitters is the number of point emitters placed at
              random locations in the grid. Zero is allowed.`,
			defaultVal: d.NumEmitters,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.NumSensors",
			usage: `
              Grid.NumSensors is the number of sensors placed at random
              locations in the grid. It must be at least 1.`,
			defaultVal: d.NumSensors,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Decay",
			usage: `
              Grid.Decay is the fraction of the concentration in each cell
              that is retained from one step to the next.`,
			defaultVal: d.Decay,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.EmissionScale",
			usage: `
              Grid.EmissionScale is the value the forcing is divided by before
              it is added to the grid at each emitter.`,
			defaultVal: d.EmissionScale,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.SensorScale",
			usage: `
              Grid.SensorScale is the value the mean sensor reading is
              multiplied by to give the simulated index.`,
			defaultVal: d.SensorScale,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Seed",
			usage: `
              Grid.Seed initializes the random placement of emitters and
              sensors. Simulations with the same seed and inputs give
              identical results.`,
			defaultVal: int(d.Seed),
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.KeepHistory",
			usage: `
              Grid.KeepHistory specifies whether the grid at every step should
              be kept and written to the output file. If false, only the final
              grid is written.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Observations",
			usage: `
              Observations is the path to a CSV file or Excel workbook holding
              the observed time series. It can be a local path or an http(s)
              URL, and can include environment variables.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ForcingColumn",
			usage: `
              ForcingColumn is the observation column that drives the
              emissions.`,
			defaultVal: obs.ForcingColumn,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ObservedColumn",
			usage: `
              ObservedColumn is the observation column that the simulated
              index is compared to.`,
			defaultVal: obs.ObservedColumn,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where output files are written. It is
              created if it doesn't exist and can include environment variables.`,
			shorthand:  "o",
			defaultVal: "aqilab_output",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), globalmapCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies derived series to be calculated at
              each step. It maps series names to expressions that can use the
              variables Observed, Forcing, Simulated, Step, and IsDay, the
              functions exp(x), max(a, b), and min(a, b), and the names of
              other output variables.`,
			defaultVal: aqilab.DefaultOutputVariables(),
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Figures",
			usage: `
              Figures specifies whether PNG figures and an HTML report should
              be created.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), globalmapCmd.Flags()},
		},
		{
			name: "Store",
			usage: `
              Store is the path to a SQLite database where a record of each
              run is kept. No record is kept if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), runsCmd.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left empty, the
              log will be written to 'aqilab.log' in OutputDir.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GlobalMap.Lats",
			usage: `
              GlobalMap.Lats is the number of latitudes in the global grid.`,
			defaultVal: globalmap.DefaultLats,
			flagsets:   []*pflag.FlagSet{globalmapCmd.Flags()},
		},
		{
			name: "GlobalMap.Lons",
			usage: `
              GlobalMap.Lons is the number of longitudes in the global grid.`,
			defaultVal: globalmap.DefaultLons,
			flagsets:   []*pflag.FlagSet{globalmapCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("AQILAB")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := strings.TrimSpace(b.String())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(globalmapCmd)
	Root.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("aqilab: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("Verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	return nil
}

// commandContext returns the context of cmd, which is only set
// when cmd is run through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "aqilab",
	Short: "A hybrid air quality simulator.",
	Long: `AQILab drives a gridded pollutant dispersion model with an observed air
quality time series, samples the grid with a network of virtual sensors, and
compares the resulting index to the observations.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'AQILAB_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of AQILab.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("AQILab v%s\n", aqilab.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: `run drives a grid simulation with the observed time series in the
Observations file and writes the simulated index, derived series, the
simulated grid, figures, and a run manifest to OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GridConfig(Cfg)
		if err != nil {
			return err
		}
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		outputVars, err := GetStringMapString("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		outputVars, err = checkOutputVars(outputVars)
		if err != nil {
			return err
		}
		observations, err := checkObservations(Cfg.GetString("Observations"))
		if err != nil {
			return err
		}
		_, err = Run(
			commandContext(cmd),
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputDir),
			outputDir,
			cfg,
			maybeDownload(observations),
			Cfg.GetString("ForcingColumn"),
			Cfg.GetString("ObservedColumn"),
			outputVars,
			Cfg.GetBool("Figures"),
			expandPath(Cfg.GetString("Store")),
		)
		return err
	},
	DisableAutoGenTag: true,
}

// globalmapCmd is a command that creates global maps.
var globalmapCmd = &cobra.Command{
	Use:   "globalmap",
	Short: "Create global air quality maps.",
	Long: `globalmap calculates heuristic day and night air quality fields and a
map of the dominant pollutant on a global latitude-longitude grid and writes
them to OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		return GlobalMap(cmd, outputDir, Cfg.GetInt("GlobalMap.Lats"), Cfg.GetInt("GlobalMap.Lons"),
			Cfg.GetBool("Figures"))
	},
	DisableAutoGenTag: true,
}

// runsCmd groups the commands that read the run catalogue.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect previous runs.",
	Long: `runs reads the records of previous runs from the database specified
by the Store configuration variable.`,
	DisableAutoGenTag: true,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List previous runs.",
	Long:  "list prints a summary of every run in the catalogue, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ListRuns(commandContext(cmd), cmd.OutOrStdout(), expandPath(Cfg.GetString("Store")))
	},
	DisableAutoGenTag: true,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a previous run.",
	Long:  "show prints the full record of the run with the given ID.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ShowRun(commandContext(cmd), cmd.OutOrStdout(), expandPath(Cfg.GetString("Store")), args[0])
	},
	DisableAutoGenTag: true,
}
