package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/scoredash/pkg/chart"
	"github.com/Sumatoshi-tech/scoredash/pkg/web"
)

const studentsCSV = `gender,math score,reading score,writing score
female,72,72,74
female,69,90,88
male,47,57,44
male,76,78,75
`

var errRender = errors.New("render failed")

type stubRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (sr *stubRenderer) Histogram(spec chart.HistogramSpec) (string, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.calls++

	return spec.Name + ".png", sr.err
}

func (sr *stubRenderer) Bar(spec chart.BarSpec) (string, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.calls++

	return spec.Name + ".png", sr.err
}

func writeData(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newServer(t *testing.T, opts web.Options) *web.Server {
	t.Helper()

	if opts.Renderer == nil {
		opts.Renderer = &stubRenderer{}
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	srv, err := web.New(opts)
	require.NoError(t, err)

	return srv
}

func do(t *testing.T, srv *web.Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), method, target, nil))

	return rec
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := web.New(web.Options{Renderer: &stubRenderer{}})
	require.ErrorIs(t, err, web.ErrNoDataPath)

	_, err = web.New(web.Options{DataPath: "x.csv"})
	require.ErrorIs(t, err, web.ErrNoRenderer)
}

func TestIndex_RendersDashboard(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{}
	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV), Renderer: renderer})

	rec := do(t, srv, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := rec.Body.String()
	for _, want := range []string{
		"Mean Scores", "Median Scores", "Mode Scores", "Standard Deviation",
		"math score", "reading score", "writing score",
		"66.00",
		"Top Students in Math",
		"Student_4",
		"<th>gender</th>",
		"<td>male</td>",
		"Subjects to Improve",
		`src="/static/math_scores.png"`,
		`src="/static/mean_scores.png"`,
	} {
		assert.Contains(t, body, want)
	}

	assert.NotContains(t, body, "<iframe")
	assert.Equal(t, 2, renderer.calls)
}

func TestIndex_InteractiveChartsUseIframes(t *testing.T) {
	t.Parallel()

	srv := newServer(t, web.Options{
		DataPath:    writeData(t, studentsCSV),
		ChartFormat: chart.FormatHTML,
	})

	rec := do(t, srv, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<iframe")
}

func TestIndex_EmptyDataset(t *testing.T) {
	t.Parallel()

	srv := newServer(t, web.Options{DataPath: writeData(t, "math score,reading score,writing score\n")})

	rec := do(t, srv, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "N/A")
	assert.Contains(t, rec.Body.String(), "No students.")
}

func TestIndex_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dataPath func(t *testing.T) string
		renderer *stubRenderer
		stage    string
	}{
		{
			name:     "missing_file",
			dataPath: func(t *testing.T) string { t.Helper(); return filepath.Join(t.TempDir(), "nope.csv") },
			renderer: &stubRenderer{},
			stage:    "load dataset",
		},
		{
			name: "bad_score",
			dataPath: func(t *testing.T) string {
				t.Helper()

				return writeData(t, "math score,reading score,writing score\nabc,1,2\n")
			},
			renderer: &stubRenderer{},
			stage:    "load dataset",
		},
		{
			name: "nan_score",
			dataPath: func(t *testing.T) string {
				t.Helper()

				return writeData(t, "math score,reading score,writing score\nNaN,1,2\n")
			},
			renderer: &stubRenderer{},
			stage:    "load dataset",
		},
		{
			name:     "render_error",
			dataPath: func(t *testing.T) string { t.Helper(); return writeData(t, studentsCSV) },
			renderer: &stubRenderer{err: errRender},
			stage:    "render charts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer

			srv := newServer(t, web.Options{
				DataPath: tt.dataPath(t),
				Renderer: tt.renderer,
				Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
			})

			rec := do(t, srv, http.MethodGet, "/")

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.stage)
			assert.NotContains(t, rec.Body.String(), "<html")
			assert.Contains(t, logs.String(), "dashboard request failed")
		})
	}
}

func TestIndex_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV)})

	rec := do(t, srv, http.MethodPost, "/")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownPath(t *testing.T) {
	t.Parallel()

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV)})

	rec := do(t, srv, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV)})

	rec := do(t, srv, http.MethodGet, "/api/summary?subject=reading")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		Rows       int    `json:"rows"`
		TopSubject string `json:"top_subject"`
		Top        []struct {
			ID string `json:"id"`
		} `json:"top"`
		Summary struct {
			Mean map[string]float64 `json:"mean"`
		} `json:"summary"`
	}

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, 4, got.Rows)
	assert.Equal(t, "reading score", got.TopSubject)
	require.NotEmpty(t, got.Top)
	assert.Equal(t, "Student_2", got.Top[0].ID)
	assert.InDelta(t, 66.0, got.Summary.Mean["math score"], 0.0001)
}

func TestSummary_UnknownSubject(t *testing.T) {
	t.Parallel()

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV)})

	rec := do(t, srv, http.MethodGet, "/api/summary?subject=history")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatic_ServesChartFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math_scores.png"), []byte("png-bytes"), 0o600))

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV), StaticDir: dir})

	rec := do(t, srv, http.MethodGet, "/static/math_scores.png")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestIndex_WithPNGRenderer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	renderer, err := chart.NewRenderer(chart.FormatPNG, chart.ThemeLight, dir)
	require.NoError(t, err)

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV), StaticDir: dir, Renderer: renderer})

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/").Code)

	rec := do(t, srv, http.MethodGet, "/static/mean_scores.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHealthAndReady(t *testing.T) {
	t.Parallel()

	dataPath := writeData(t, studentsCSV)
	srv := newServer(t, web.Options{DataPath: dataPath})

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/readyz").Code)

	missing := newServer(t, web.Options{DataPath: filepath.Join(t.TempDir(), "gone.csv")})

	rec := do(t, missing, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	plain := newServer(t, web.Options{DataPath: writeData(t, studentsCSV)})
	assert.Equal(t, http.StatusNotFound, do(t, plain, http.MethodGet, "/metrics").Code)

	metrics := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(rw, "scoredash_requests_total 1\n")
	})

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV), Metrics: metrics})

	rec := do(t, srv, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "scoredash_requests_total"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	srv := newServer(t, web.Options{DataPath: writeData(t, studentsCSV)})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)

	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	url := "http://" + ln.Addr().String() + "/healthz"

	require.Eventually(t, func() bool {
		req, reqErr := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
		if reqErr != nil {
			return false
		}

		resp, getErr := http.DefaultClient.Do(req)
		if getErr != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
