package chart

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	htmlExt = ".html"
	// pixelsPerInch maps [Style] sizes onto the interactive canvas.
	pixelsPerInch = 96
)

// EChartsRenderer writes interactive go-echarts pages, one per chart.
type EChartsRenderer struct {
	dir  string
	opts *ChartOpts
}

// NewEChartsRenderer writes charts into dir with the light theme.
func NewEChartsRenderer(dir string) *EChartsRenderer {
	return &EChartsRenderer{dir: dir, opts: NewChartOpts(ThemeLight)}
}

// WithTheme switches the chart theme.
func (r *EChartsRenderer) WithTheme(theme Theme) *EChartsRenderer {
	r.opts = NewChartOpts(theme)

	return r
}

// Histogram implements [Renderer]. Bins are drawn as adjacent bars labelled
// with their range.
func (r *EChartsRenderer) Histogram(spec HistogramSpec) (string, error) {
	buckets := bins(spec.Values, spec.Bins)

	labels := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))

	for i, b := range buckets {
		labels[i] = formatEdge(b.Min) + "-" + formatEdge(b.Max)
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := r.newBar(spec.Style)
	bar.SetXAxis(labels).AddSeries(spec.Style.YLabel, data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: spec.Color, BorderColor: spec.EdgeColor, BorderWidth: 1}),
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}),
	)

	name := spec.Name + htmlExt

	return name, writeFile(r.dir, name, func(w io.Writer) error {
		return bar.Render(w)
	})
}

// Bar implements [Renderer].
func (r *EChartsRenderer) Bar(spec BarSpec) (string, error) {
	data := make([]opts.BarData, len(spec.Values))

	for i, v := range spec.Values {
		data[i] = opts.BarData{Value: v}

		if len(spec.Colors) > 0 {
			data[i].ItemStyle = &opts.ItemStyle{Color: spec.Colors[i%len(spec.Colors)]}
		}
	}

	bar := r.newBar(spec.Style)

	yAxis := r.opts.YAxis(spec.Style.YLabel)
	yAxis.Min = spec.YMin
	yAxis.Max = spec.YMax
	bar.SetGlobalOptions(charts.WithYAxisOpts(yAxis))

	bar.SetXAxis(spec.Labels).AddSeries(spec.Style.YLabel, data)

	name := spec.Name + htmlExt

	return name, writeFile(r.dir, name, func(w io.Writer) error {
		return bar.Render(w)
	})
}

func (r *EChartsRenderer) newBar(style Style) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(r.opts.Init(inchesToPixels(style.Width), inchesToPixels(style.Height))),
		charts.WithTitleOpts(r.opts.Title(style.Title, "")),
		charts.WithTooltipOpts(r.opts.Tooltip("axis")),
		charts.WithGridOpts(r.opts.Grid()),
		charts.WithXAxisOpts(r.opts.XAxis(style.XLabel)),
		charts.WithYAxisOpts(r.opts.YAxis(style.YLabel)),
	)

	return bar
}

func inchesToPixels(in float64) string {
	return fmt.Sprintf("%dpx", int(in*pixelsPerInch))
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
