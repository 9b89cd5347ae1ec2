// Package web serves the score dashboard over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/scoredash/pkg/chart"
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
	"github.com/Sumatoshi-tech/scoredash/pkg/observability"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
)

// Server timeout defaults, used when Options leaves them zero.
const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Construction errors.
var (
	ErrNoDataPath = errors.New("web: data path is required")
	ErrNoRenderer = errors.New("web: chart renderer is required")
)

// Options are the explicit dependencies of a [Server].
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:5000".
	Addr string

	// DataPath is the CSV or XLSX file read on every request.
	DataPath string

	// StaticDir is the chart output directory served under /static/.
	StaticDir string

	// Renderer draws the two charts into StaticDir.
	Renderer chart.Renderer

	// ChartFormat is recorded on chart metrics and selects iframe embedding
	// for interactive charts.
	ChartFormat chart.Format

	// Subject is the subject whose distribution is charted.
	Subject dataset.Subject

	// Report controls the top-students ranking.
	Report report.Options

	Logger   *slog.Logger
	Tracer   trace.Tracer
	RED      *observability.REDMetrics
	Pipeline *observability.PipelineMetrics

	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the dashboard HTTP server. It is immutable after [New].
type Server struct {
	opts    Options
	handler http.Handler
}

// New validates opts, fills defaults and builds the route table.
func New(opts Options) (*Server, error) {
	if opts.DataPath == "" {
		return nil, ErrNoDataPath
	}

	if opts.Renderer == nil {
		return nil, ErrNoRenderer
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("scoredash")
	}

	if opts.ChartFormat == "" {
		opts.ChartFormat = chart.FormatPNG
	}

	if opts.Report == (report.Options{}) {
		opts.Report = report.DefaultOptions()
	}

	opts.ReadTimeout = orDefault(opts.ReadTimeout, defaultReadTimeout)
	opts.WriteTimeout = orDefault(opts.WriteTimeout, defaultWriteTimeout)
	opts.IdleTimeout = orDefault(opts.IdleTimeout, defaultIdleTimeout)

	srv := &Server{opts: opts}
	srv.handler = observability.HTTPMiddleware(opts.Tracer, opts.Logger, opts.RED, srv.routes())

	return srv, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}

	return d
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(s.dataReadable))

	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics)
	}

	return mux
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) dataReadable(_ context.Context) error {
	f, err := os.Open(s.opts.DataPath)
	if err != nil {
		return fmt.Errorf("dataset not readable: %w", err)
	}

	return f.Close()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	s.opts.Logger.InfoContext(ctx, "dashboard listening",
		"addr", "http://"+ln.Addr().String(),
		"data", s.opts.DataPath,
		"charts", s.opts.StaticDir,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.opts.Logger.InfoContext(ctx, "dashboard stopped")

	return nil
}
