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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aqilab/figures"
	"github.com/spatialmodel/aqilab/globalmap"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// Names of the files written by GlobalMap.
const (
	SharesFile     = "dominant_shares.csv"
	DayMapFigure   = "global_day.png"
	NightMapFigure = "global_night.png"
	DominantFigure = "global_dominant.png"
)

// GlobalMap calculates day and night index fields and the dominant
// pollutant on a global grid with nLat latitudes and nLon longitudes. The
// share of cells dominated by each pollutant is written to a CSV file in
// outputDir, and if makeFigures is true the maps are drawn as well.
func GlobalMap(cmd *cobra.Command, outputDir string, nLat, nLon int, makeFigures bool) error {
	logrus.SetOutput(cmd.OutOrStdout())
	defer logrus.SetOutput(os.Stderr)

	ll, err := globalmap.NewLatLon(nLat, nLon)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"lats": nLat, "lons": nLon}).Info("Calculating global fields...")
	day, night := globalmap.DayNight(ll.Base(), globalmap.DayFactor, globalmap.NightFactor)
	dominant, err := globalmap.Dominant(ll.Composition())
	if err != nil {
		return err
	}
	shares := globalmap.Shares(dominant, len(globalmap.Pollutants))
	for i, p := range globalmap.Pollutants {
		logrus.WithField("pollutant", p).Debugf("dominant in %.1f%% of cells", shares[i]*100)
	}
	if err := writeShares(filepath.Join(outputDir, SharesFile), shares); err != nil {
		return err
	}
	if !makeFigures {
		return nil
	}

	for _, m := range []struct {
		file, title string
		field       mat.Matrix
	}{
		{DayMapFigure, "Global AQI (day)", day},
		{NightMapFigure, "Global AQI (night)", night},
	} {
		p, err := figures.WorldMap(ll, m.field, m.title)
		if err != nil {
			return err
		}
		if err := figures.Save(p, figures.MapWidth, figures.MapHeight, filepath.Join(outputDir, m.file)); err != nil {
			return err
		}
	}
	p, err := figures.DominantMap(ll, dominant, globalmap.Pollutants)
	if err != nil {
		return err
	}
	if err := figures.Save(p, figures.MapWidth, figures.MapHeight, filepath.Join(outputDir, DominantFigure)); err != nil {
		return err
	}
	logrus.WithField("dir", outputDir).Info("Global maps written")
	return nil
}

func writeShares(path string, shares []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aqilab: creating shares file: %v", err)
	}
	w := csv.NewWriter(f)
	w.Write([]string{"Pollutant", "Share"})
	for i, p := range globalmap.Pollutants {
		w.Write([]string{p, strconv.FormatFloat(shares[i], 'g', -1, 64)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("aqilab: writing shares file: %v", err)
	}
	return f.Close()
}
