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

package obs

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spatialmodel/aqilab"
	"github.com/tealeg/xlsx"
)

const testCSV = `Country,City,AQI Value,AQI Category,PM2.5 AQI Value
Russian Federation,Praskoveya,51,Moderate,51
Brazil,Presidente Dutra,41,Good,41
Italy,Priolo Gargallo,66,Moderate,
Poland,Przasnysz,,Good,20
France,Punaauia,NA,Good,5
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 5 {
		t.Errorf("len = %d, want 5", tbl.Len())
	}
	if want := []string{ObservedColumn, ForcingColumn}; !cmp.Equal(tbl.NumericColumns(), want) {
		t.Errorf("numeric columns = %v, want %v", tbl.NumericColumns(), want)
	}
	n, err := tbl.Missing(ObservedColumn)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("missing = %d, want 2", n)
	}
	if _, err := tbl.Column("PM10"); err == nil {
		t.Error("expected an error for a missing column")
	}
}

func TestFillMean(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV))
	if err != nil {
		t.Fatal(err)
	}
	tbl.FillMean()
	aqi, err := tbl.Column(ObservedColumn)
	if err != nil {
		t.Fatal(err)
	}
	mean := (51. + 41 + 66) / 3
	want := []float64{51, 41, 66, mean, mean}
	if !cmp.Equal(aqi, want) {
		t.Error(cmp.Diff(want, aqi))
	}
	pm, err := tbl.Forcing(ForcingColumn)
	if err != nil {
		t.Fatal(err)
	}
	pmMean := (51. + 41 + 20 + 5) / 4
	if !cmp.Equal(pm, []float64{51, 41, pmMean, 20, 5}) {
		t.Errorf("forcing = %v", pm)
	}
	city, err := tbl.Column("City")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range city {
		if !math.IsNaN(v) {
			t.Errorf("text column was filled: %v", city)
			break
		}
	}
}

func TestFillMeanEmptyColumn(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n1,\n2,NA\n"))
	if err != nil {
		t.Fatal(err)
	}
	tbl.FillMean()
	b, err := tbl.Column("b")
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(b, []float64{0, 0}) {
		t.Errorf("b = %v, want zeros", b)
	}
}

func TestForcingWithoutFill(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testCSV))
	if err != nil {
		t.Fatal(err)
	}
	_, err = tbl.Forcing(ForcingColumn)
	if !errors.Is(err, aqilab.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	empty, err := ReadCSV(strings.NewReader("AQI Value\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = empty.Forcing(ObservedColumn); !errors.Is(err, aqilab.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestDayNight(t *testing.T) {
	if want := []bool{true, false, true, false, true}; !cmp.Equal(DayNight(5), want) {
		t.Errorf("DayNight(5) = %v", DayNight(5))
	}
	if got := Scale([]float64{10, 20}, 1.25); !cmp.Equal(got, []float64{12.5, 25}) {
		t.Errorf("Scale = %v", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "obs.csv")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0644); err != nil {
		t.Fatal(err)
	}
	fromCSV, err := Load(csvPath)
	if err != nil {
		t.Fatal(err)
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimSpace(testCSV), "\n") {
		row := sheet.AddRow()
		for _, v := range strings.Split(line, ",") {
			row.AddCell().SetString(v)
		}
	}
	xlsxPath := filepath.Join(dir, "obs.xlsx")
	if err := f.Save(xlsxPath); err != nil {
		t.Fatal(err)
	}
	fromXLSX, err := Load(xlsxPath)
	if err != nil {
		t.Fatal(err)
	}

	fromCSV.FillMean()
	fromXLSX.FillMean()
	for _, name := range []string{ObservedColumn, ForcingColumn} {
		a, _ := fromCSV.Column(name)
		b, err := fromXLSX.Column(name)
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(a, b) {
			t.Errorf("%s: %s", name, cmp.Diff(a, b))
		}
	}
}
