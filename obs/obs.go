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

// Package obs reads observed air quality time series and prepares them
// for use as simulation forcing.
package obs

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spatialmodel/aqilab"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/stat"
)

// Default column names.
const (
	ForcingColumn  = "PM2.5 AQI Value"
	ObservedColumn = "AQI Value"
)

// Table holds a table of observations. Values that are missing or
// not numeric are stored as NaN.
type Table struct {
	Names []string
	Data  [][]float64 // one slice per column

	// numeric records whether every cell in each column is either a
	// number or missing.
	numeric []bool
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	if len(t.Data) == 0 {
		return 0
	}
	return len(t.Data[0])
}

// Load reads a table from a CSV file or, if the file name ends in
// ".xlsx", from the first sheet of an Excel workbook.
func Load(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obs: opening observations: %v", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads a table from CSV data with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("obs: reading CSV: %v", err)
	}
	return newTable(records)
}

// ReadXLSX reads a table from the first sheet of an Excel workbook.
// The first row holds the column names.
func ReadXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("obs: opening workbook: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("obs: workbook %s has no sheets", path)
	}
	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		rec := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			rec[i] = c.Value
		}
		records = append(records, rec)
	}
	return newTable(records)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("obs: table has no header row")
	}
	t := &Table{Names: make([]string, len(records[0]))}
	for i, n := range records[0] {
		t.Names[i] = strings.TrimSpace(n)
	}
	rows := records[1:]
	t.Data = make([][]float64, len(t.Names))
	t.numeric = make([]bool, len(t.Names))
	for j := range t.Data {
		t.Data[j] = make([]float64, len(rows))
		t.numeric[j] = true
	}
	for i, rec := range rows {
		for j := range t.Names {
			t.Data[j][i] = math.NaN()
			if j >= len(rec) {
				continue
			}
			v, ok := parseValue(rec[j])
			if !ok {
				t.numeric[j] = false
				continue
			}
			t.Data[j][i] = v
		}
	}
	return t, nil
}

// parseValue parses a cell. Empty cells and cells marked NA or NaN
// are missing.
func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "n/a", "null":
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// NumericColumns returns the names of the columns whose cells are all
// numbers or missing.
func (t *Table) NumericColumns() []string {
	var o []string
	for i, n := range t.Names {
		if t.numeric[i] {
			o = append(o, n)
		}
	}
	return o
}

func (t *Table) index(name string) (int, error) {
	for i, n := range t.Names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("obs: no column named '%s'; available columns are %v", name, t.Names)
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	i, err := t.index(name)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), t.Data[i]...), nil
}

// FillMean replaces missing values in each numeric column with the mean of
// the values that are present. Missing values in a column without any
// values become zero. Columns with text are left alone.
func (t *Table) FillMean() {
	for j, col := range t.Data {
		if !t.numeric[j] {
			continue
		}
		present := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		var mean float64
		if len(present) > 0 {
			mean = stat.Mean(present, nil)
		}
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = mean
			}
		}
	}
}

// Missing returns the number of missing values in the named column.
func (t *Table) Missing(name string) (int, error) {
	i, err := t.index(name)
	if err != nil {
		return 0, err
	}
	var n int
	for _, v := range t.Data[i] {
		if math.IsNaN(v) {
			n++
		}
	}
	return n, nil
}

// Forcing returns the named column checked for use as a forcing series.
func (t *Table) Forcing(name string) ([]float64, error) {
	f, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if err := aqilab.CheckForcing(f); err != nil {
		return nil, fmt.Errorf("obs: column '%s': %w", name, err)
	}
	return f, nil
}

// DayNight returns alternating day and night flags for n observations.
// Observations with an even index are daytime.
func DayNight(n int) []bool {
	o := make([]bool, n)
	for i := range o {
		o[i] = i%2 == 0
	}
	return o
}

// Scale returns a copy of s with every value multiplied by factor.
func Scale(s []float64, factor float64) []float64 {
	o := make([]float64, len(s))
	for i, v := range s {
		o[i] = v * factor
	}
	return o
}
