package chart_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/scoredash/pkg/chart"
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type recordingRenderer struct {
	histograms []chart.HistogramSpec
	bars       []chart.BarSpec
	err        error
}

func (r *recordingRenderer) Histogram(spec chart.HistogramSpec) (string, error) {
	r.histograms = append(r.histograms, spec)

	return spec.Name + ".rec", r.err
}

func (r *recordingRenderer) Bar(spec chart.BarSpec) (string, error) {
	r.bars = append(r.bars, spec)

	return spec.Name + ".rec", r.err
}

func sample() *dataset.Dataset {
	return dataset.New("mem",
		dataset.Record{ID: "a", Math: 10, Reading: 20, Writing: 30},
		dataset.Record{ID: "b", Math: 90, Reading: 80, Writing: 70},
		dataset.Record{ID: "c", Math: 55, Reading: 65, Writing: 75},
	)
}

func TestRender_BuildsBothSpecs(t *testing.T) {
	t.Parallel()

	rec := &recordingRenderer{}

	art, err := chart.Render(rec, sample(), dataset.Math)
	require.NoError(t, err)

	assert.Equal(t, chart.Artifacts{Distribution: "math_scores.rec", Means: "mean_scores.rec"}, art)

	require.Len(t, rec.histograms, 1)
	hist := rec.histograms[0]
	assert.Equal(t, "math_scores", hist.Name)
	assert.Equal(t, []float64{10, 90, 55}, hist.Values)
	assert.Equal(t, 10, hist.Bins)
	assert.Equal(t, "#3498db", hist.Color)
	assert.Equal(t, "Math Score Distribution", hist.Style.Title)
	assert.Equal(t, "Score", hist.Style.XLabel)
	assert.Equal(t, "Number of Students", hist.Style.YLabel)

	require.Len(t, rec.bars, 1)
	bar := rec.bars[0]
	assert.Equal(t, "mean_scores", bar.Name)
	assert.Equal(t, []string{"Math", "Reading", "Writing"}, bar.Labels)
	assert.InDeltaSlice(t, []float64{51.6667, 55, 58.3333}, bar.Values, 0.001)
	assert.Equal(t, []string{"#e74c3c", "#2ecc71", "#f1c40f"}, bar.Colors)
	assert.InDelta(t, 0.0, bar.YMin, 0.0001)
	assert.InDelta(t, 100.0, bar.YMax, 0.0001)
	assert.Equal(t, "Mean Score by Subject", bar.Style.Title)
}

func TestRender_OtherSubject(t *testing.T) {
	t.Parallel()

	rec := &recordingRenderer{}

	_, err := chart.Render(rec, sample(), dataset.Writing)
	require.NoError(t, err)

	assert.Equal(t, "writing_scores", rec.histograms[0].Name)
	assert.Equal(t, "Writing Score Distribution", rec.histograms[0].Style.Title)
}

func TestRender_PropagatesErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	rec := &recordingRenderer{err: boom}

	_, err := chart.Render(rec, sample(), dataset.Math)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, rec.bars, "bar chart is skipped after a failed histogram")
}

func TestMeansSpec_EmptyDataset(t *testing.T) {
	t.Parallel()

	spec := chart.MeansSpec(dataset.New("empty"))
	assert.Equal(t, []float64{0, 0, 0}, spec.Values)
}

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "static")

	r, err := chart.NewRenderer(chart.FormatPNG, chart.ThemeLight, dir)
	require.NoError(t, err)
	assert.IsType(t, &chart.PNGRenderer{}, r)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	r, err = chart.NewRenderer(chart.FormatHTML, chart.ThemeDark, dir)
	require.NoError(t, err)
	assert.IsType(t, &chart.EChartsRenderer{}, r)

	_, err = chart.NewRenderer("svgz", chart.ThemeLight, dir)
	require.ErrorIs(t, err, chart.ErrUnknownFormat)

	_, err = chart.NewRenderer(chart.FormatPNG, "sepia", dir)
	require.ErrorIs(t, err, chart.ErrUnknownTheme)
}

func TestPNGRenderer_ThemeChangesOutput(t *testing.T) {
	t.Parallel()

	render := func(theme chart.Theme) []byte {
		dir := t.TempDir()

		r, err := chart.NewRenderer(chart.FormatPNG, theme, dir)
		require.NoError(t, err)

		name, err := r.Bar(chart.MeansSpec(sample()))
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)

		return data
	}

	light, dark := render(chart.ThemeLight), render(chart.ThemeDark)

	assert.True(t, bytes.HasPrefix(dark, pngMagic))
	assert.NotEqual(t, light, dark)
}

func TestPNGRenderer_WritesTwoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	art, err := chart.Render(chart.NewPNGRenderer(dir), sample(), dataset.Math)
	require.NoError(t, err)
	assert.Equal(t, chart.Artifacts{Distribution: "math_scores.png", Means: "mean_scores.png"}, art)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "no temporary files are left behind")

	for _, name := range []string{art.Distribution, art.Means} {
		data, readErr := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, readErr)
		assert.True(t, bytes.HasPrefix(data, pngMagic), name)
	}
}

func TestPNGRenderer_Overwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := chart.NewPNGRenderer(dir)

	_, err := chart.Render(r, sample(), dataset.Math)
	require.NoError(t, err)

	_, err = chart.Render(r, dataset.New("one", dataset.Record{ID: "x", Math: 50, Reading: 50, Writing: 50}), dataset.Math)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPNGRenderer_EmptyDataset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := chart.Render(chart.NewPNGRenderer(dir), dataset.New("empty"), dataset.Math)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "math_scores.png"))
	assert.FileExists(t, filepath.Join(dir, "mean_scores.png"))
}

func TestPNGRenderer_BadColor(t *testing.T) {
	t.Parallel()

	spec := chart.DistributionSpec(sample(), dataset.Math)
	spec.Color = "blue-ish"

	_, err := chart.NewPNGRenderer(t.TempDir()).Histogram(spec)
	require.Error(t, err)
}

func TestEChartsRenderer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	art, err := chart.Render(chart.NewEChartsRenderer(dir).WithTheme(chart.ThemeDark), sample(), dataset.Reading)
	require.NoError(t, err)
	assert.Equal(t, chart.Artifacts{Distribution: "reading_scores.html", Means: "mean_scores.html"}, art)

	page, err := os.ReadFile(filepath.Join(dir, art.Distribution))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Reading Score Distribution")
	assert.Contains(t, string(page), "echarts")

	page, err = os.ReadFile(filepath.Join(dir, art.Means))
	require.NoError(t, err)
	assert.Contains(t, string(page), "#2ecc71")
	assert.Contains(t, string(page), "#1c1917")
}
