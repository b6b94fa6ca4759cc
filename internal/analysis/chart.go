package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Chart formats accepted by WriteRewardChart
const (
	ChartFormatPNG  = "png"
	ChartFormatHTML = "html"
)

const chartTitle = "Episode reward"

// WriteRewardChart writes raw and smoothed reward curves to path in format
func WriteRewardChart(path, format string, raw, smoothed []float64) error {
	switch format {
	case ChartFormatPNG:
		return WriteRewardChartPNG(path, raw, smoothed)
	case ChartFormatHTML:
		return WriteRewardChartHTML(path, raw, smoothed)
	default:
		return fmt.Errorf("unknown chart format %q", format)
	}
}

// WriteRewardChartPNG renders the curves with gonum/plot. Image format
// follows the file extension.
func WriteRewardChartPNG(path string, raw, smoothed []float64) error {
	p := plot.New()
	p.Title.Text = chartTitle
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Reward"

	series := []struct {
		name string
		data []float64
	}{
		{"raw", raw},
		{"smoothed", smoothed},
	}
	for i, s := range series {
		if len(s.data) == 0 {
			continue
		}
		points := make(plotter.XYs, len(s.data))
		for j, v := range s.data {
			points[j] = plotter.XY{X: float64(j + 1), Y: v}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("building %s series: %w", s.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// WriteRewardChartHTML renders the curves as an interactive go-echarts page
func WriteRewardChartHTML(path string, raw, smoothed []float64) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	if err := RenderRewardChartHTML(f, raw, smoothed); err != nil {
		return err
	}
	return f.Close()
}

// RenderRewardChartHTML writes the go-echarts page to w
func RenderRewardChartHTML(w io.Writer, raw, smoothed []float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: chartTitle,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	n := len(raw)
	if len(smoothed) > n {
		n = len(smoothed)
	}
	episodes := make([]string, n)
	for i := range episodes {
		episodes[i] = strconv.Itoa(i + 1)
	}
	line.SetXAxis(episodes)
	line.AddSeries("raw", lineData(raw))
	line.AddSeries("smoothed", lineData(smoothed))

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating chart directory: %w", err)
	}
	return nil
}
