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

// Package figures draws plots of simulation results and global maps.
package figures

import (
	"fmt"
	"image/color"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spatialmodel/aqilab/globalmap"
)

// Default figure sizes.
var (
	SeriesWidth  = 10 * vg.Inch
	SeriesHeight = 4 * vg.Inch
	MapWidth     = 10 * vg.Inch
	MapHeight    = 5 * vg.Inch
	GridSize     = 6 * vg.Inch
)

// Series is a named time series.
type Series struct {
	Name   string
	Values []float64
}

var lineColors = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
}

// TimeSeries returns a line plot of the given series against their
// index.
func TimeSeries(title, yLabel string, series ...Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("figures: no series to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Index"
	p.Y.Label.Text = yLabel
	for i, s := range series {
		pts := make(plotter.XYs, len(s.Values))
		for j, v := range s.Values {
			pts[j].X = float64(j)
			pts[j].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("figures: series %s: %v", s.Name, err)
		}
		line.Color = lineColors[i%len(lineColors)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p, nil
}

// SeriesComparison plots an observed series together with the simulated
// sensor aggregate.
func SeriesComparison(observed, simulated []float64) (*plot.Plot, error) {
	return TimeSeries("Observed vs Simulated AQI (OSSE)", "AQI",
		Series{Name: "Observed", Values: observed},
		Series{Name: "Simulated OSSE", Values: simulated},
	)
}

// denseGrid adapts a two-dimensional array to plotter.GridXYZ.
// Columns are plotted on the x axis and rows on the y axis.
type denseGrid struct{ *sparse.DenseArray }

func (g denseGrid) Dims() (c, r int)   { return g.Shape[1], g.Shape[0] }
func (g denseGrid) Z(c, r int) float64 { return g.Get(r, c) }
func (g denseGrid) X(c int) float64    { return float64(c) }
func (g denseGrid) Y(r int) float64    { return float64(r) }

// latLonGrid adapts a field on a global grid to plotter.GridXYZ.
type latLonGrid struct {
	ll *globalmap.LatLon
	z  func(r, c int) float64
}

func (g latLonGrid) Dims() (c, r int)   { return len(g.ll.Lon), len(g.ll.Lat) }
func (g latLonGrid) Z(c, r int) float64 { return g.z(r, c) }
func (g latLonGrid) X(c int) float64    { return g.ll.Lon[c] }
func (g latLonGrid) Y(r int) float64    { return g.ll.Lat[r] }

// continuousPalette returns a palette for heat maps.
func continuousPalette() palette.Palette {
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm.Palette(255)
}

func heatMap(g plotter.GridXYZ, pal palette.Palette) *plotter.HeatMap {
	hm := plotter.NewHeatMap(g, pal)
	if !(hm.Max > hm.Min) {
		// Avoid dividing by zero when the field is uniform.
		hm.Max = hm.Min + 1
	}
	return hm
}

// HeatMap plots a two-dimensional concentration grid.
func HeatMap(g *sparse.DenseArray, title string) (*plot.Plot, error) {
	if len(g.Shape) != 2 {
		return nil, fmt.Errorf("figures: grid must be two-dimensional but has shape %v", g.Shape)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (max=%.3g)", title, g.Max())
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"
	p.Add(heatMap(denseGrid{g}, continuousPalette()))
	return p, nil
}

// WorldMap plots a field on a global grid.
func WorldMap(ll *globalmap.LatLon, field mat.Matrix, title string) (*plot.Plot, error) {
	r, c := field.Dims()
	if r != len(ll.Lat) || c != len(ll.Lon) {
		return nil, fmt.Errorf("figures: field is %dx%d but grid is %dx%d", r, c, len(ll.Lat), len(ll.Lon))
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (max=%.3g)", title, mat.Max(field))
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Add(heatMap(latLonGrid{ll: ll, z: field.At}, continuousPalette()))
	return p, nil
}

// swatch is a legend entry filled with a single color.
type swatch struct{ color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.Color, c.ClipPolygonY(pts))
}

// DominantMap plots the index of the dominant field at each grid point,
// with one legend entry for each of names.
func DominantMap(ll *globalmap.LatLon, dominant [][]int, names []string) (*plot.Plot, error) {
	if len(dominant) != len(ll.Lat) || (len(dominant) > 0 && len(dominant[0]) != len(ll.Lon)) {
		return nil, fmt.Errorf("figures: dominant pollutant array does not match the grid")
	}
	if len(names) < 2 {
		return nil, fmt.Errorf("figures: need at least 2 categories but have %d", len(names))
	}
	pal := palette.Rainbow(len(names), palette.Blue, palette.Red, 1, 1, 1)
	g := latLonGrid{ll: ll, z: func(r, c int) float64 { return float64(dominant[r][c]) }}
	hm := plotter.NewHeatMap(g, pal)
	hm.Min, hm.Max = 0, float64(len(names)-1)

	p := plot.New()
	p.Title.Text = "Dominant pollutant"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Add(hm)
	for i, n := range names {
		p.Legend.Add(n, swatch{pal.Colors()[i]})
	}
	p.Legend.Top = true
	return p, nil
}

// Save writes p to the given file. The format is determined by the
// file extension.
func Save(p *plot.Plot, width, height vg.Length, file string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("figures: invalid size %gx%g", width, height)
	}
	if err := p.Save(width, height, file); err != nil {
		return fmt.Errorf("figures: saving %s: %v", file, err)
	}
	return nil
}
