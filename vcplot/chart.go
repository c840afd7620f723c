// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vcplot draws charts of victim cache results and adaptation
// histories.
package vcplot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/adaptivecache/vcperf/history"
	"github.com/adaptivecache/vcperf/vcfmt"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Reference lines, in percent.
const (
	HitRateTarget     = 12
	HighOccupancy     = 85
	LowOccupancy      = 40
	ImprovementTarget = 8

	// MaxSize is the upper bound of the victim cache size axis.
	MaxSize = 140
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// File names written by Options.
const (
	AdaptationFile = "adaptation_plot.png"
	HitRatesFile   = "hit_rate_comparison.png"
	CheckpointFile = "checkpoint_comparison.png"
)

// Options control where and how charts are written.
type Options struct {
	// Dir is the output directory. It is created if necessary.
	Dir string

	// DPI is the image resolution. If 0, 300 is used.
	DPI int
}

var (
	blue   = color.NRGBA{0x1f, 0x77, 0xb4, 0xff}
	orange = color.NRGBA{0xff, 0x7f, 0x0e, 0xff}
	green  = color.NRGBA{0x2c, 0xa0, 0x2c, 0xff}
	red    = color.NRGBA{0xd6, 0x27, 0x28, 0xff}

	palette = []color.Color{
		blue, orange, green, red,
		color.NRGBA{0x94, 0x67, 0xbd, 0xff},
		color.NRGBA{0x8c, 0x56, 0x4b, 0xff},
	}
)

// AdaptationPlots returns the three panels of an adaptation chart:
// victim cache size, hit rate, and occupancy over time.
func AdaptationPlots(samples []history.Sample) ([]*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, ErrNoData
	}
	series := func(y func(history.Sample) float64) plotter.XYs {
		xys := make(plotter.XYs, len(samples))
		for i, s := range samples {
			xys[i].X = float64(s.Timestamp) / 1000
			xys[i].Y = y(s)
		}
		return xys
	}

	size := newPlot("Adaptive Victim Cache - Dynamic Size Adjustment", "", "Victim Cache Size")
	if err := addLine(size, series(func(s history.Sample) float64 { return float64(s.VictimSize) }), blue); err != nil {
		return nil, err
	}
	size.Y.Min, size.Y.Max = 0, MaxSize

	hit := newPlot("", "", "Hit Rate (%)")
	if err := addLine(hit, series(func(s history.Sample) float64 { return s.HitRate * 100 }), green); err != nil {
		return nil, err
	}
	refLine(hit, HitRateTarget, red, fmt.Sprintf("Target (%d%%)", HitRateTarget))

	occ := newPlot("", "Instructions (K)", "Occupancy (%)")
	if err := addLine(occ, series(func(s history.Sample) float64 { return s.Occupancy * 100 }), orange); err != nil {
		return nil, err
	}
	refLine(occ, HighOccupancy, red, fmt.Sprintf("High Threshold (%d%%)", HighOccupancy))
	refLine(occ, LowOccupancy, blue, fmt.Sprintf("Low Threshold (%d%%)", LowOccupancy))

	return []*plot.Plot{size, hit, occ}, nil
}

// HitRatePlot returns a bar chart of the hit rate of each benchmark
// in rs that reports one.
func HitRatePlot(rs *vcfmt.ResultSet) (*plot.Plot, error) {
	var names []string
	var vals []float64
	for _, rec := range rs.Records() {
		if rec.HitRate.Valid {
			names = append(names, rec.Name)
			vals = append(vals, rec.HitRate.Float64)
		}
	}
	if len(vals) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Victim Cache Hit Rate by Benchmark", "Benchmark", "Hit Rate (%)")
	labels := plotter.XYLabels{XYs: make(plotter.XYs, len(vals)), Labels: make([]string, len(vals))}
	for i, v := range vals {
		b, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(24))
		if err != nil {
			return nil, err
		}
		b.XMin = float64(i)
		b.Color = palette[i%len(palette)]
		b.LineStyle.Width = 0
		p.Add(b)

		labels.XYs[i] = plotter.XY{X: float64(i), Y: v}
		labels.Labels[i] = fmt.Sprintf("%.1f%%", v)
	}
	if err := addLabels(p, labels); err != nil {
		return nil, err
	}
	nominal(p, names)
	return p, nil
}

// CheckpointPlots returns the two panels of a checkpoint comparison:
// the hit rates of both checkpoints side by side, and the change of
// each benchmark's hit rate in percentage points.
//
// Only benchmarks with a hit rate in both checkpoints are shown, in
// baseline order.
func CheckpointPlots(static, adaptive *vcfmt.ResultSet) ([]*plot.Plot, error) {
	var names []string
	var before, after plotter.Values
	for _, b := range static.Records() {
		a, ok := adaptive.Lookup(b.Name)
		if !ok || !b.HitRate.Valid || !a.HitRate.Valid {
			continue
		}
		names = append(names, b.Name)
		before = append(before, b.HitRate.Float64)
		after = append(after, a.HitRate.Float64)
	}
	if len(names) == 0 {
		return nil, ErrNoData
	}

	const width = 12
	rates := newPlot("Hit Rate: Static vs Adaptive", "Benchmark", "Hit Rate (%)")
	for i, side := range []struct {
		vals  plotter.Values
		color color.Color
		label string
	}{
		{before, blue, "Static (CP1)"},
		{after, orange, "Adaptive (CP2)"},
	} {
		b, err := plotter.NewBarChart(side.vals, vg.Points(width))
		if err != nil {
			return nil, err
		}
		b.Color = side.color
		b.LineStyle.Width = 0
		b.Offset = vg.Points(width * (float64(i) - 0.5))
		rates.Add(b)
		rates.Legend.Add(side.label, b)
	}
	nominal(rates, names)

	delta := newPlot("Performance Improvement", "Benchmark", "Improvement (%)")
	for i := range names {
		d := after[i] - before[i]
		b, err := plotter.NewBarChart(plotter.Values{d}, vg.Points(2*width))
		if err != nil {
			return nil, err
		}
		b.XMin = float64(i)
		b.Color = withAlpha(red, 0xb3)
		if d > 0 {
			b.Color = withAlpha(green, 0xb3)
		}
		b.LineStyle.Width = 0
		delta.Add(b)
	}
	zero := refLine(delta, 0, color.Black, "")
	zero.Dashes = nil
	zero.Width = vg.Points(0.5)
	refLine(delta, ImprovementTarget, green, fmt.Sprintf("Target (%d%%)", ImprovementTarget))
	nominal(delta, names)

	return []*plot.Plot{rates, delta}, nil
}

// WriteAdaptation draws the adaptation chart of samples and returns
// the path of the written image.
func (o Options) WriteAdaptation(samples []history.Sample) (string, error) {
	plots, err := AdaptationPlots(samples)
	if err != nil {
		return "", err
	}
	col := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		col[i] = []*plot.Plot{p}
	}
	return o.write(AdaptationFile, 12*vg.Inch, 10*vg.Inch, col)
}

// WriteHitRates draws the per-benchmark hit rate chart of rs and
// returns the path of the written image.
func (o Options) WriteHitRates(rs *vcfmt.ResultSet) (string, error) {
	p, err := HitRatePlot(rs)
	if err != nil {
		return "", err
	}
	return o.write(HitRatesFile, 10*vg.Inch, 6*vg.Inch, [][]*plot.Plot{{p}})
}

// WriteCheckpoints draws the comparison of two checkpoints and
// returns the path of the written image.
func (o Options) WriteCheckpoints(static, adaptive *vcfmt.ResultSet) (string, error) {
	plots, err := CheckpointPlots(static, adaptive)
	if err != nil {
		return "", err
	}
	return o.write(CheckpointFile, 14*vg.Inch, 6*vg.Inch, [][]*plot.Plot{plots})
}

// write lays out plots in a grid and writes them as a PNG named name.
func (o Options) write(name string, w, h vg.Length, plots [][]*plot.Plot) (string, error) {
	dpi := o.DPI
	if dpi <= 0 {
		dpi = 300
	}
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, draw.New(img))
	for j, row := range plots {
		for i, p := range row {
			p.Draw(canvases[j][i])
		}
	}

	if o.Dir != "" {
		if err := os.MkdirAll(o.Dir, 0777); err != nil {
			return "", err
		}
	}
	path := filepath.Join(o.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = 14
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = color.Gray{0xd0}
	p.Add(grid)
	return p
}

func addLine(p *plot.Plot, xys plotter.XYs, c color.Color) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = vg.Points(2)
	p.Add(l)
	return nil
}

// refLine adds a dashed horizontal line at y and widens the Y axis to
// include it. If label is not empty, the line gets a legend entry.
func refLine(p *plot.Plot, y float64, c color.Color, label string) *plotter.Function {
	fn := plotter.NewFunction(func(float64) float64 { return y })
	fn.Color = c
	fn.Width = vg.Points(1)
	fn.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(fn)
	if label != "" {
		p.Legend.Add(label, fn)
	}
	p.Y.Min = math.Min(p.Y.Min, y)
	p.Y.Max = math.Max(p.Y.Max, y)
	return fn
}

func addLabels(p *plot.Plot, xyl plotter.XYLabels) error {
	l, err := plotter.NewLabels(xyl)
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
	}
	l.Offset = vg.Point{Y: vg.Points(3)}
	p.Add(l)
	return nil
}

// nominal labels the X axis with names, slanted so long names fit.
func nominal(p *plot.Plot, names []string) {
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YTop
	p.X.Padding = vg.Points(10)
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
