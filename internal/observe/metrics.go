// Package observe provides pathql's observability primitives: OpenTelemetry
// query metrics and structured logging helpers, tied together the way
// MrWong99-glyphoxa's internal/observe package does.
//
// A package-level default [Metrics] instance is available via
// [DefaultMetrics] for convenience; tests should build their own via
// [NewMetrics] with a dedicated MeterProvider to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/arkivegraph/pathql"

// Metrics holds every OpenTelemetry instrument pathql records against.
type Metrics struct {
	QueryDuration      metric.Float64Histogram
	QueriesTotal       metric.Int64Counter
	CandidatesExplored metric.Int64Histogram
	ActiveQueries      metric.Int64UpDownCounter
	EnrichmentFetches  metric.Int64Counter
}

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NewMetrics builds a Metrics using the given MeterProvider. Returns an
// error if any instrument fails to register.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.QueryDuration, err = m.Float64Histogram("pathql.query.duration",
		metric.WithDescription("Wall-clock duration of a Query call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.QueriesTotal, err = m.Int64Counter("pathql.query.total",
		metric.WithDescription("Total queries handled, by error tag (empty for success)."),
	); err != nil {
		return nil, err
	}
	if met.CandidatesExplored, err = m.Int64Histogram("pathql.query.candidates_explored",
		metric.WithDescription("Candidate paths explored per query."),
	); err != nil {
		return nil, err
	}
	if met.ActiveQueries, err = m.Int64UpDownCounter("pathql.query.active",
		metric.WithDescription("Number of queries currently in flight."),
	); err != nil {
		return nil, err
	}
	if met.EnrichmentFetches, err = m.Int64Counter("pathql.enrich.fetches",
		metric.WithDescription("Total content-enrichment object fetches, by status."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics instance, built lazily
// from otel.GetMeterProvider(). Panics if instrument registration fails,
// which should not happen against the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordQuery records one completed query's duration, candidate count, and
// outcome.
func (m *Metrics) RecordQuery(ctx context.Context, durationSeconds float64, candidatesExplored int64, errorTag string) {
	m.QueryDuration.Record(ctx, durationSeconds)
	m.CandidatesExplored.Record(ctx, candidatesExplored)
	m.QueriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("error_tag", errorTag)))
}

// RecordEnrichmentFetch records one content-enrichment object fetch attempt.
func (m *Metrics) RecordEnrichmentFetch(ctx context.Context, status string) {
	m.EnrichmentFetches.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
