package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID carries the request correlation ID in both directions.
const HeaderRequestID = "X-Request-ID"

// httpStatusServerError is the threshold for HTTP server errors.
const httpStatusServerError = 500

// maxRequestIDLen bounds client-supplied request IDs.
const maxRequestIDLen = 128

// statusWriter wraps [http.ResponseWriter] to capture the status code.
type statusWriter struct {
	http.ResponseWriter

	statusCode int
	written    bool
}

// WriteHeader captures the status code before delegating to the wrapped writer.
func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.statusCode = code
		sw.written = true
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(buf []byte) (int, error) {
	if !sw.written {
		sw.statusCode = http.StatusOK
		sw.written = true
	}

	n, err := sw.ResponseWriter.Write(buf)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}

	return n, nil
}

// HTTPMiddleware returns an [http.Handler] that creates a span per request,
// assigns a request ID, records RED metrics and logs one line per request.
// Span names use route-template format: "METHOD /path". logger and red may
// be nil.
func HTTPMiddleware(tracer trace.Tracer, logger *slog.Logger, red *REDMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		start := time.Now()
		op := hr.Method + " " + hr.URL.Path

		// Extract W3C traceparent/tracestate/baggage from incoming headers.
		parentCtx := otel.GetTextMapPropagator().Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))

		requestID := hr.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}

		ctx, span := tracer.Start(WithRequestID(parentCtx, requestID), op,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(hr.Method),
				attribute.String("http.target", hr.URL.Path),
				attribute.String("http.request_id", requestID),
			),
		)
		defer span.End()

		if red != nil {
			done := red.TrackInflight(ctx, op)
			defer done()
		}

		rw.Header().Set(HeaderRequestID, requestID)

		sw := &statusWriter{ResponseWriter: rw, statusCode: http.StatusOK}
		next.ServeHTTP(sw, hr.WithContext(ctx))

		span.SetAttributes(semconv.HTTPResponseStatusCode(sw.statusCode))

		status := StatusOK
		if sw.statusCode >= httpStatusServerError {
			status = StatusError

			span.SetStatus(codes.Error, http.StatusText(sw.statusCode))
		}

		elapsed := time.Since(start)

		if red != nil {
			red.RecordRequest(ctx, op, status, elapsed)
		}

		if logger != nil {
			logger.InfoContext(ctx, "request",
				"method", hr.Method,
				"path", hr.URL.Path,
				"status", sw.statusCode,
				"duration", elapsed,
			)
		}
	})
}
