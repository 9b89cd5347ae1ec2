package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/scoredash/pkg/chart"
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
)

// handleIndex runs the whole pipeline for every request: load, statistics,
// charts, page.
func (s *Server) handleIndex(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	ds, err := s.load(ctx)
	if err != nil {
		s.fail(ctx, rw, "load dataset", err)

		return
	}

	rep := report.Build(ds, s.opts.Report)

	art, err := s.render(ctx, ds)
	if err != nil {
		s.fail(ctx, rw, "render charts", err)

		return
	}

	var buf bytes.Buffer

	err = renderIndex(&buf, newPageData(rep, art, s.opts.ChartFormat))
	if err != nil {
		s.fail(ctx, rw, "render page", err)

		return
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(rw)
}

// handleSummary answers the report as JSON. An optional ?subject= query
// overrides the ranking subject.
func (s *Server) handleSummary(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	ds, err := s.load(ctx)
	if err != nil {
		s.fail(ctx, rw, "load dataset", err)

		return
	}

	opt := s.opts.Report

	if name := hr.URL.Query().Get("subject"); name != "" {
		subject, parseErr := dataset.ParseSubject(name)
		if parseErr != nil {
			http.Error(rw, parseErr.Error(), http.StatusBadRequest)

			return
		}

		opt.TopSubject = subject
	}

	data, err := json.Marshal(report.Build(ds, opt))
	if err != nil {
		s.fail(ctx, rw, "encode summary", err)

		return
	}

	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(data)
}

func (s *Server) load(ctx context.Context) (*dataset.Dataset, error) {
	_, span := s.opts.Tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.path", s.opts.DataPath)))
	defer span.End()

	ds, err := dataset.Load(s.opts.DataPath)

	if s.opts.Pipeline != nil {
		s.opts.Pipeline.RecordLoad(ctx, ds.Len(), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")

		return nil, err
	}

	span.SetAttributes(attribute.Int("dataset.rows", ds.Len()))

	return ds, nil
}

func (s *Server) render(ctx context.Context, ds *dataset.Dataset) (chart.Artifacts, error) {
	_, span := s.opts.Tracer.Start(ctx, "chart.render",
		trace.WithAttributes(attribute.String("chart.format", string(s.opts.ChartFormat))))
	defer span.End()

	start := time.Now()

	art, err := chart.Render(s.opts.Renderer, ds, s.opts.Subject)

	if s.opts.Pipeline != nil {
		s.opts.Pipeline.RecordChart(ctx, string(s.opts.ChartFormat), time.Since(start))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")

		return chart.Artifacts{}, err
	}

	return art, nil
}

// fail logs err and answers 500 with a short message. Nothing has been
// written to rw yet, so no partial page escapes.
func (s *Server) fail(ctx context.Context, rw http.ResponseWriter, stage string, err error) {
	s.opts.Logger.ErrorContext(ctx, "dashboard request failed", "stage", stage, "error", err)

	http.Error(rw, fmt.Sprintf("Internal Server Error: %s failed", stage), http.StatusInternalServerError)
}
