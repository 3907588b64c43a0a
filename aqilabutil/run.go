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
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aqilab"
	"github.com/spatialmodel/aqilab/figures"
	"github.com/spatialmodel/aqilab/internal/hash"
	"github.com/spatialmodel/aqilab/obs"
	"github.com/spatialmodel/aqilab/store"
	"github.com/spf13/cobra"
)

// Names of the files written to the output directory.
const (
	SeriesFile   = "series.csv"
	NetCDFFile   = "aqilab.nc"
	ManifestFile = "manifest.toml"
	ReportFile   = "report.html"

	SeriesFigure  = "series.png"
	DerivedFigure = "derived.png"
	GridFigure    = "final_grid.png"
)

// Manifest describes the inputs and outputs of a run.
type Manifest struct {
	ID      string    `toml:"id"`
	Created time.Time `toml:"created"`
	Version string    `toml:"version"`

	// Fingerprint identifies the configuration and forcing of the run.
	Fingerprint string `toml:"fingerprint"`

	Observations   string `toml:"observations"`
	ForcingColumn  string `toml:"forcing_column"`
	ObservedColumn string `toml:"observed_column"`

	Steps    int     `toml:"steps"`
	FinalSum float64 `toml:"final_sum"`
	FinalMax float64 `toml:"final_max"`

	Emitters [][]int `toml:"emitters"`
	Sensors  [][]int `toml:"sensors"`
	Files    []string `toml:"files"`

	Grid            aqilab.Config     `toml:"grid"`
	OutputVariables map[string]string `toml:"output_variables"`
}

// Run runs a simulation driven by an observed time series.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Log messages are written to its standard output as well as to the log file.
//
// LogFile is the path to the desired logfile location.
//
// OutputDir is the directory where output files are written. It must exist.
//
// Config specifies the grid, emitters, and sensors.
//
// Observations is the path to a CSV file or Excel workbook holding the
// observed series. Missing values are replaced with the column mean.
// ForcingColumn is the column used as the forcing and ObservedColumn is the
// column the simulated index is compared to.
//
// OutputVariables specifies the derived series to calculate.
//
// If Figures is true, PNG figures and an HTML report are created.
//
// StorePath is the path to the run catalogue database. If it is empty,
// no record of the run is kept.
func Run(ctx context.Context, CobraCommand *cobra.Command, LogFile, OutputDir string, Config aqilab.Config,
	Observations, ForcingColumn, ObservedColumn string, OutputVariables map[string]string,
	Figures bool, StorePath string) (*Manifest, error) {

	startTime := time.Now()

	// Start a function to receive and print log messages.
	logfile, err := os.Create(LogFile)
	if err != nil {
		return nil, fmt.Errorf("aqilab: problem creating log file: %v", err)
	}
	mw := io.MultiWriter(CobraCommand.OutOrStdout(), logfile)
	logrus.SetOutput(mw)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	cLog := make(chan *aqilab.SimulationStatus)
	cLogTick := time.Tick(2 * time.Second)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		for msg := range cLog {
			select {
			case <-cLogTick:
				logrus.Info(msg.String())
			default:
				logrus.Debug(msg.String())
			}
		}
		wg.Done()
	}()

	defer func() { // Wait for the logging to finish.
		close(cLog)
		wg.Wait()
		logrus.SetOutput(os.Stderr)
		logfile.Close()
	}()

	m := &Manifest{
		ID:              uuid.NewString(),
		Created:         startTime,
		Version:         aqilab.Version,
		Observations:    Observations,
		ForcingColumn:   ForcingColumn,
		ObservedColumn:  ObservedColumn,
		OutputVariables: OutputVariables,
	}
	log := logrus.WithField("run", m.ID)

	log.Info("Parsing output variable expressions...")
	o, err := aqilab.NewOutputter(OutputVariables, nil)
	if err != nil {
		return nil, err
	}

	log.WithField("file", Observations).Info("Reading observations...")
	t, err := obs.Load(Observations)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{ForcingColumn, ObservedColumn} {
		n, err := t.Missing(col)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.WithFields(logrus.Fields{"column": col, "missing": n}).Warn("filling missing values with the column mean")
		}
	}
	t.FillMean()
	forcing, err := t.Forcing(ForcingColumn)
	if err != nil {
		return nil, err
	}
	observed, err := t.Column(ObservedColumn)
	if err != nil {
		return nil, err
	}
	m.Fingerprint = hash.Hash(Config, forcing)

	log.WithFields(logrus.Fields{
		"steps": len(forcing),
		"rows":  Config.GridRows,
		"cols":  Config.GridCols,
	}).Info("Running simulation...")
	res, err := aqilab.Simulate(Config, forcing, cLog)
	if err != nil {
		return nil, err
	}
	m.Grid = res.Config
	m.Steps = res.Steps()
	m.FinalSum = res.Final.Sum()
	m.FinalMax = res.Final.Max()
	m.Emitters = coordPairs(res.Emitters)
	m.Sensors = coordPairs(res.Sensors)
	log.WithFields(logrus.Fields{"mass": m.FinalSum, "max": m.FinalMax}).Info("Simulation finished")

	derived, err := o.Output(observed, res)
	if err != nil {
		return nil, err
	}

	write := func(name string, f func(string) error) error {
		path := filepath.Join(OutputDir, name)
		if err := f(path); err != nil {
			return err
		}
		m.Files = append(m.Files, name)
		log.WithField("file", path).Debug("wrote output")
		return nil
	}

	log.Info("Writing output...")
	if err := write(SeriesFile, func(path string) error {
		return writeSeries(path, observed, res, o.Names(), derived)
	}); err != nil {
		return nil, err
	}
	if err := write(NetCDFFile, func(path string) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("aqilab: creating output file: %v", err)
		}
		if err := aqilab.WriteNetCDF(f, res); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}); err != nil {
		return nil, err
	}
	if Figures {
		if err := writeFigures(write, observed, res, o.Names(), derived); err != nil {
			return nil, err
		}
	}

	if StorePath != "" {
		if err := recordRun(ctx, log, StorePath, m, res); err != nil {
			return nil, err
		}
	}

	m.Files = append(m.Files, ManifestFile)
	if err := writeManifest(filepath.Join(OutputDir, ManifestFile), m); err != nil {
		return nil, err
	}

	log.WithField("walltime", time.Since(startTime)).Info("AQILab completed!")
	return m, nil
}

func coordPairs(c []aqilab.Coord) [][]int {
	o := make([][]int, len(c))
	for i, cc := range c {
		o[i] = []int{cc.Row, cc.Col}
	}
	return o
}

// writeSeries writes the per-step series to a CSV file.
func writeSeries(path string, observed []float64, res *aqilab.Result, names []string, derived map[string][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aqilab: creating series file: %v", err)
	}
	w := csv.NewWriter(f)
	header := append([]string{"Step", aqilab.IsDayVar, aqilab.ObservedVar, aqilab.ForcingVar, aqilab.SimulatedVar}, names...)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("aqilab: writing series file: %v", err)
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for t, day := range obs.DayNight(res.Steps()) {
		rec := []string{strconv.Itoa(t), strconv.FormatBool(day), ff(observed[t]), ff(res.Forcing[t]), ff(res.Aggregate[t])}
		for _, n := range names {
			rec = append(rec, ff(derived[n][t]))
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("aqilab: writing series file: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("aqilab: writing series file: %v", err)
	}
	return f.Close()
}

func writeFigures(write func(string, func(string) error) error, observed []float64, res *aqilab.Result,
	names []string, derived map[string][]float64) error {
	if err := write(SeriesFigure, func(path string) error {
		p, err := figures.SeriesComparison(observed, res.Aggregate)
		if err != nil {
			return err
		}
		return figures.Save(p, figures.SeriesWidth, figures.SeriesHeight, path)
	}); err != nil {
		return err
	}
	if err := write(DerivedFigure, func(path string) error {
		series := make([]figures.Series, len(names))
		for i, n := range names {
			series[i] = figures.Series{Name: n, Values: derived[n]}
		}
		p, err := figures.TimeSeries("Derived series", "AQI", series...)
		if err != nil {
			return err
		}
		return figures.Save(p, figures.SeriesWidth, figures.SeriesHeight, path)
	}); err != nil {
		return err
	}
	if err := write(GridFigure, func(path string) error {
		p, err := figures.HeatMap(res.Final, "Final concentration")
		if err != nil {
			return err
		}
		return figures.Save(p, figures.GridSize, figures.GridSize, path)
	}); err != nil {
		return err
	}
	return write(ReportFile, func(path string) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("aqilab: creating report: %v", err)
		}
		if err := figures.Report(f, observed, res.Aggregate, res.Final); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// recordRun saves the run in the catalogue at path, noting any earlier
// runs with the same inputs.
func recordRun(ctx context.Context, log *logrus.Entry, path string, m *Manifest, res *aqilab.Result) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	prev, err := s.FindByFingerprint(ctx, m.Fingerprint)
	if err != nil {
		return err
	}
	for _, r := range prev {
		log.WithField("previous", r.ID).Info("a run with the same inputs already exists")
	}
	cfg, err := json.Marshal(res.Config)
	if err != nil {
		return fmt.Errorf("aqilab: encoding run configuration: %v", err)
	}
	_, err = s.SaveRun(ctx, store.Run{
		ID:          m.ID,
		Created:     m.Created,
		Fingerprint: m.Fingerprint,
		Config:      cfg,
		Steps:       m.Steps,
		Aggregate:   res.Aggregate,
		FinalSum:    m.FinalSum,
		FinalMax:    m.FinalMax,
	})
	return err
}

func writeManifest(path string, m *Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aqilab: creating manifest: %v", err)
	}
	if err := toml.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("aqilab: writing manifest: %v", err)
	}
	return f.Close()
}

// ReadManifest reads a run manifest written by Run.
func ReadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("aqilab: reading manifest: %v", err)
	}
	return &m, nil
}
