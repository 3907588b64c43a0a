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
	"fmt"
	"io"
	"strconv"

	"github.com/ctessum/sparse"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// viridis is the color scale used for interactive grid plots.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// SeriesChart returns an interactive line chart of the given series.
func SeriesChart(title, subtitle string, series ...Series) *charts.Line {
	n := 0
	for _, s := range series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	x := make([]string, n)
	for i := range x {
		x[i] = strconv.Itoa(i)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Index", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "AQI", NameLocation: "middle", NameGap: 35}),
	)
	line.SetXAxis(x)
	for _, s := range series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data)
	}
	return line
}

// GridChart returns an interactive scatter plot of a two-dimensional grid,
// with one point per cell colored by its value.
func GridChart(title string, g *sparse.DenseArray) (*charts.Scatter, error) {
	if len(g.Shape) != 2 {
		return nil, fmt.Errorf("figures: grid must be two-dimensional but has shape %v", g.Shape)
	}
	rows, cols := g.Shape[0], g.Shape[1]
	data := make([]opts.ScatterData, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, opts.ScatterData{Value: []interface{}{j, i, g.Get(i, j)}})
		}
	}
	max := g.Max()
	if !(max > 0) {
		max = 1
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%dx%d cells, max=%.3g", rows, cols, g.Max())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -1, Max: cols, Name: "Column", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: rows, Name: "Row", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("concentration", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	return scatter, nil
}

// Report writes an HTML page comparing observed and simulated series and
// showing the final concentration grid.
func Report(w io.Writer, observed, simulated []float64, final *sparse.DenseArray) error {
	line := SeriesChart("Observed vs Simulated AQI", fmt.Sprintf("%d steps", len(simulated)),
		Series{Name: "Observed", Values: observed},
		Series{Name: "Simulated OSSE", Values: simulated},
	)
	grid, err := GridChart("Final concentration", final)
	if err != nil {
		return err
	}
	page := components.NewPage()
	page.AddCharts(line, grid)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("figures: rendering report: %v", err)
	}
	return nil
}
