package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRowsLoaded    = "scoredash.dataset.rows"
	metricLoadsTotal    = "scoredash.dataset.loads.total"
	metricChartDuration = "scoredash.chart.render.duration.seconds"

	attrFormat = "format"
)

// PipelineMetrics holds OTel instruments for the load and chart stages.
type PipelineMetrics struct {
	rowsLoaded    metric.Float64Histogram
	loadsTotal    metric.Int64Counter
	chartDuration metric.Float64Histogram
}

// rowBucketBoundaries spans toy files up to large class exports.
var rowBucketBoundaries = []float64{1, 10, 100, 1000, 10000, 100000}

// NewPipelineMetrics creates pipeline metric instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		rowsLoaded:    b.histogram(metricRowsLoaded, "Rows per loaded dataset", "{row}", rowBucketBoundaries...),
		loadsTotal:    b.counter(metricLoadsTotal, "Dataset loads by status", "{load}"),
		chartDuration: b.histogram(metricChartDuration, "Time spent drawing both charts", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordLoad records one dataset load. rows is ignored when err is non-nil.
func (pm *PipelineMetrics) RecordLoad(ctx context.Context, rows int, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}

	pm.loadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))

	if err == nil {
		pm.rowsLoaded.Record(ctx, float64(rows))
	}
}

// RecordChart records how long rendering the chart pair took.
func (pm *PipelineMetrics) RecordChart(ctx context.Context, format string, duration time.Duration) {
	pm.chartDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(attrFormat, format)))
}
