// Package chart draws the dashboard's two chart artifacts: the score
// distribution of one subject and the mean score of every subject.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/scoredash/pkg/alg/stats"
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
)

// Format selects a [Renderer] implementation.
type Format string

// Supported formats.
const (
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
)

// Chart defaults.
const (
	DistributionBins   = 10
	DistributionColor  = "#3498db"
	EdgeColor          = "#000000"
	MeansName          = "mean_scores"
	MeanAxisMax        = 100
	dirPerm            = 0o755
	filePerm           = 0o644
	distributionWidth  = 8
	distributionHeight = 5
	meansWidth         = 6
	meansHeight        = 4
)

// MeanColors are the bar colors of the means chart, in subject order.
var MeanColors = []string{"#e74c3c", "#2ecc71", "#f1c40f"}

// Errors returned by [NewRenderer].
var (
	ErrUnknownFormat = errors.New("unknown chart format")
	ErrUnknownTheme  = errors.New("unknown chart theme")
)

// Style is the presentation shared by every chart.
type Style struct {
	Title  string
	XLabel string
	YLabel string
	// Width and Height are in inches.
	Width  float64
	Height float64
}

// HistogramSpec describes a distribution chart.
type HistogramSpec struct {
	// Name is the output file name without extension.
	Name      string
	Values    []float64
	Bins      int
	Color     string
	EdgeColor string
	Style     Style
}

// BarSpec describes a categorical bar chart with one color per bar.
type BarSpec struct {
	Name   string
	Labels []string
	Values []float64
	Colors []string
	YMin   float64
	YMax   float64
	Style  Style
}

// Renderer writes chart files and returns the written file name relative to
// its output directory.
type Renderer interface {
	Histogram(spec HistogramSpec) (string, error)
	Bar(spec BarSpec) (string, error)
}

// Artifacts names the files produced by [Render].
type Artifacts struct {
	Distribution string `json:"distribution"`
	Means        string `json:"means"`
}

// NewRenderer creates dir if needed and returns the renderer for format,
// styled with theme.
func NewRenderer(format Format, theme Theme, dir string) (Renderer, error) {
	switch format {
	case FormatPNG, FormatHTML:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	switch theme {
	case ThemeLight, ThemeDark:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}

	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	if format == FormatHTML {
		return NewEChartsRenderer(dir).WithTheme(theme), nil
	}

	return NewPNGRenderer(dir).WithTheme(theme), nil
}

// DistributionName is the file stem of the histogram for subject,
// e.g. "math_scores".
func DistributionName(subject dataset.Subject) string {
	return strings.ToLower(subject.Label()) + "_scores"
}

// DistributionSpec is the histogram of subject over ds.
func DistributionSpec(ds *dataset.Dataset, subject dataset.Subject) HistogramSpec {
	return HistogramSpec{
		Name:      DistributionName(subject),
		Values:    ds.Column(subject),
		Bins:      DistributionBins,
		Color:     DistributionColor,
		EdgeColor: EdgeColor,
		Style: Style{
			Title:  subject.Label() + " Score Distribution",
			XLabel: "Score",
			YLabel: "Number of Students",
			Width:  distributionWidth,
			Height: distributionHeight,
		},
	}
}

// MeansSpec is the per-subject mean bar chart over ds. An empty dataset
// yields zero-height bars.
func MeansSpec(ds *dataset.Dataset) BarSpec {
	subjects := dataset.Subjects()
	spec := BarSpec{
		Name:   MeansName,
		Labels: make([]string, len(subjects)),
		Values: make([]float64, len(subjects)),
		Colors: MeanColors,
		YMin:   0,
		YMax:   MeanAxisMax,
		Style: Style{
			Title:  "Mean Score by Subject",
			YLabel: "Average Score",
			Width:  meansWidth,
			Height: meansHeight,
		},
	}

	for i, s := range subjects {
		spec.Labels[i] = s.Label()
	}

	if means, _, ok := report.SubjectMeans(ds); ok {
		for i, sm := range means {
			spec.Values[i] = sm.Mean
		}
	}

	return spec
}

// Render draws the distribution of subject and the subject means.
func Render(r Renderer, ds *dataset.Dataset, subject dataset.Subject) (Artifacts, error) {
	dist, err := r.Histogram(DistributionSpec(ds, subject))
	if err != nil {
		return Artifacts{}, fmt.Errorf("render distribution: %w", err)
	}

	means, err := r.Bar(MeansSpec(ds))
	if err != nil {
		return Artifacts{}, fmt.Errorf("render means: %w", err)
	}

	return Artifacts{Distribution: dist, Means: means}, nil
}

// bin is one histogram bucket, [Min, Max).
type bin struct {
	Min, Max float64
	Count    int
}

func bins(values []float64, n int) []bin {
	edges, counts := stats.Histogram(values, n)

	out := make([]bin, len(counts))
	for i, c := range counts {
		out[i] = bin{Min: edges[i], Max: edges[i+1], Count: c}
	}

	return out
}

// writeFile replaces dir/name with what write produces. The content goes to a
// temporary file in dir first, so readers never see a partial chart.
func writeFile(dir, name string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp chart: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	err = tmp.Chmod(filePerm)
	if err == nil {
		err = write(tmp)
	}

	if err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write %s: %w", name, err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	err = os.Rename(tmp.Name(), filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}

	return nil
}
