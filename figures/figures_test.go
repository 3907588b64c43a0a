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

package figures

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/sparse"

	"github.com/spatialmodel/aqilab/globalmap"
)

func checkFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestSeriesComparison(t *testing.T) {
	p, err := SeriesComparison([]float64{50, 60, 55, 70}, []float64{0, 12, 30, 41})
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "series.png")
	if err := Save(p, SeriesWidth, SeriesHeight, out); err != nil {
		t.Fatal(err)
	}
	checkFile(t, out)

	if _, err := TimeSeries("empty", "AQI"); err == nil {
		t.Error("expected an error with no series")
	}
}

func TestHeatMap(t *testing.T) {
	g := sparse.ZerosDense(4, 5)
	g.Set(2, 1, 3)
	g.Set(0.5, 0, 0)
	p, err := HeatMap(g, "Final concentration")
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "grid.png")
	if err := Save(p, GridSize, GridSize, out); err != nil {
		t.Fatal(err)
	}
	checkFile(t, out)

	// A uniform grid should still be drawable.
	p, err = HeatMap(sparse.ZerosDense(3, 3), "zeros")
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(p, GridSize, GridSize, filepath.Join(t.TempDir(), "zeros.png")); err != nil {
		t.Fatal(err)
	}

	if _, err := HeatMap(sparse.ZerosDense(2, 2, 2), "3d"); err == nil {
		t.Error("expected an error for a 3-D array")
	}
}

func TestMaps(t *testing.T) {
	ll, err := globalmap.NewLatLon(18, 36)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	p, err := WorldMap(ll, ll.Base(), "Base AQI")
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(p, MapWidth, MapHeight, filepath.Join(dir, "base.png")); err != nil {
		t.Fatal(err)
	}
	checkFile(t, filepath.Join(dir, "base.png"))

	dom, err := globalmap.Dominant(ll.Composition())
	if err != nil {
		t.Fatal(err)
	}
	p, err = DominantMap(ll, dom, globalmap.Pollutants)
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(p, MapWidth, MapHeight, filepath.Join(dir, "dominant.svg")); err != nil {
		t.Fatal(err)
	}
	checkFile(t, filepath.Join(dir, "dominant.svg"))

	small, err := globalmap.NewLatLon(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WorldMap(small, ll.Base(), "mismatch"); err == nil {
		t.Error("expected an error for a mismatched field")
	}
}

func TestReport(t *testing.T) {
	g := sparse.ZerosDense(3, 3)
	g.Set(1, 1, 1)
	var buf bytes.Buffer
	if err := Report(&buf, []float64{1, 2, 3}, []float64{0, 1, 2}, g); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, s := range []string{"echarts", "Observed", "Simulated OSSE", "Final concentration"} {
		if !strings.Contains(html, s) {
			t.Errorf("report does not contain %q", s)
		}
	}
}
