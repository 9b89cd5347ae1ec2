package chart

import (
	"fmt"
	"image/color"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	pngExt          = ".png"
	pngFormat       = "png"
	titleFontPoints = 14
	barWidthPoints  = 40
	edgeWidthPoints = 1
)

// PNGRenderer draws raster charts with gonum/plot.
type PNGRenderer struct {
	dir   string
	theme ThemeConfig
}

// NewPNGRenderer writes charts into dir, which must exist, with the light
// theme.
func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{dir: dir, theme: GetThemeConfig(ThemeLight)}
}

// WithTheme switches the background, text, axis and grid colors.
func (r *PNGRenderer) WithTheme(theme Theme) *PNGRenderer {
	r.theme = GetThemeConfig(theme)

	return r
}

// Histogram implements [Renderer].
func (r *PNGRenderer) Histogram(spec HistogramSpec) (string, error) {
	fill, err := parseColor(spec.Color)
	if err != nil {
		return "", err
	}

	edge, err := parseColor(spec.EdgeColor)
	if err != nil {
		return "", err
	}

	p, err := r.newPlot(spec.Style)
	if err != nil {
		return "", err
	}

	buckets := bins(spec.Values, spec.Bins)
	if len(buckets) > 0 {
		hist := &plotter.Histogram{
			Bins:      make([]plotter.HistogramBin, len(buckets)),
			Width:     buckets[0].Max - buckets[0].Min,
			FillColor: fill,
			LineStyle: draw.LineStyle{Color: edge, Width: vg.Points(edgeWidthPoints)},
		}

		for i, b := range buckets {
			hist.Bins[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: float64(b.Count)}
		}

		p.Add(hist)
	}

	name := spec.Name + pngExt

	return name, r.save(p, spec.Style, name)
}

// Bar implements [Renderer].
func (r *PNGRenderer) Bar(spec BarSpec) (string, error) {
	p, err := r.newPlot(spec.Style)
	if err != nil {
		return "", err
	}

	for i, v := range spec.Values {
		bars, barErr := plotter.NewBarChart(plotter.Values{v}, vg.Points(barWidthPoints))
		if barErr != nil {
			return "", fmt.Errorf("bar %d: %w", i, barErr)
		}

		bars.XMin = float64(i)
		bars.LineStyle.Width = 0

		if len(spec.Colors) > 0 {
			c, colorErr := parseColor(spec.Colors[i%len(spec.Colors)])
			if colorErr != nil {
				return "", colorErr
			}

			bars.Color = c
		}

		p.Add(bars)
	}

	p.NominalX(spec.Labels...)
	p.Y.Min = spec.YMin
	p.Y.Max = spec.YMax

	name := spec.Name + pngExt

	return name, r.save(p, spec.Style, name)
}

func (r *PNGRenderer) save(p *plot.Plot, style Style, name string) error {
	w, err := p.WriterTo(vg.Length(style.Width)*vg.Inch, vg.Length(style.Height)*vg.Inch, pngFormat)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	return writeFile(r.dir, name, func(out io.Writer) error {
		_, writeErr := w.WriteTo(out)

		return writeErr
	})
}

func (r *PNGRenderer) newPlot(style Style) (*plot.Plot, error) {
	var bg, text, muted, axis, gridColor color.Color

	for _, c := range []struct {
		dst *color.Color
		hex string
	}{
		{&bg, r.theme.ChartBackground},
		{&text, r.theme.ChartText},
		{&muted, r.theme.ChartTextMuted},
		{&axis, r.theme.ChartAxis},
		{&gridColor, r.theme.ChartGrid},
	} {
		parsed, err := parseColor(c.hex)
		if err != nil {
			return nil, err
		}

		*c.dst = parsed
	}

	p := plot.New()
	p.BackgroundColor = bg
	p.Title.Text = style.Title
	p.Title.TextStyle.Font.Size = vg.Points(titleFontPoints)
	p.Title.TextStyle.Color = text

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Label.TextStyle.Color = text
		ax.Color = axis
		ax.Tick.Color = axis
		ax.Tick.Label.Color = muted
	}

	p.X.Label.Text = style.XLabel
	p.Y.Label.Text = style.YLabel

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	return p, nil
}

func parseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", hex, err)
	}

	return c, nil
}
