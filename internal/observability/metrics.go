package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PaginationMetrics holds custom metrics for paginated field resolutions.
type PaginationMetrics struct {
	resolutionDuration metric.Float64Histogram
	resolutionCounter  metric.Int64Counter
	resultRows         metric.Int64Histogram
}

// InitPaginationMetrics initializes pagination-specific metrics.
func InitPaginationMetrics() (*PaginationMetrics, error) {
	meter := otel.Meter("graphql-pager")

	resolutionDuration, err := meter.Float64Histogram(
		"pagination.resolution.duration",
		metric.WithDescription("Duration of paginated field resolutions in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution duration histogram: %w", err)
	}

	resolutionCounter, err := meter.Int64Counter(
		"pagination.resolutions.total",
		metric.WithDescription("Total number of paginated field resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution counter: %w", err)
	}

	resultRows, err := meter.Int64Histogram(
		"pagination.result.rows",
		metric.WithDescription("Rows returned per paginated field resolution"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create result rows histogram: %w", err)
	}

	return &PaginationMetrics{
		resolutionDuration: resolutionDuration,
		resolutionCounter:  resolutionCounter,
		resultRows:         resultRows,
	}, nil
}

// RecordResolution records one completed field resolution.
func (m *PaginationMetrics) RecordResolution(ctx context.Context, strategy string, rows int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("strategy", strategy))
	m.resolutionCounter.Add(ctx, 1, attrs)
	m.resultRows.Record(ctx, int64(rows), attrs)
	m.resolutionDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}
