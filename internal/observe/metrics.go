// Package observe provides application-wide observability primitives for
// Persona: OpenTelemetry metrics, tracing, and HTTP middleware that ties
// them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Persona metrics.
const meterName = "github.com/yashas004/persona"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// SessionDuration tracks completed recording session length.
	SessionDuration metric.Float64Histogram

	// CoachDuration tracks remote coach request latency.
	CoachDuration metric.Float64Histogram

	// FramesCaptured counts video frames pulled through the capture loop.
	FramesCaptured metric.Int64Counter

	// SessionsCompleted counts sessions that produced a record.
	SessionsCompleted metric.Int64Counter

	// CoachRequests counts remote coach calls. Use with attributes:
	//   attribute.String("backend", ...), attribute.String("status", ...)
	CoachRequests metric.Int64Counter

	// CoachErrors counts remote coach failures by backend.
	CoachErrors metric.Int64Counter

	// BadgesUnlocked counts badge unlocks by badge name.
	BadgesUnlocked metric.Int64Counter

	// ActiveSessions tracks the number of recording sessions in flight
	// (0 or 1 by design, exported for alerting on stuck sessions).
	ActiveSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// sessionBuckets covers typical recording durations (in seconds).
var sessionBuckets = []float64{5, 10, 15, 30, 60, 120, 300}

// coachBuckets covers remote coach request latencies (in seconds), with the
// upper buckets sized to the request timeout.
var coachBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.SessionDuration, err = m.Float64Histogram("persona.session.duration",
		metric.WithDescription("Length of completed recording sessions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(sessionBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CoachDuration, err = m.Float64Histogram("persona.coach.duration",
		metric.WithDescription("Latency of remote coach feedback requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(coachBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.FramesCaptured, err = m.Int64Counter("persona.frames.captured",
		metric.WithDescription("Total video frames captured across sessions."),
	); err != nil {
		return nil, err
	}
	if met.SessionsCompleted, err = m.Int64Counter("persona.sessions.completed",
		metric.WithDescription("Total sessions that produced a session record."),
	); err != nil {
		return nil, err
	}
	if met.CoachRequests, err = m.Int64Counter("persona.coach.requests",
		metric.WithDescription("Total remote coach requests by backend and status."),
	); err != nil {
		return nil, err
	}
	if met.CoachErrors, err = m.Int64Counter("persona.coach.errors",
		metric.WithDescription("Total remote coach failures by backend."),
	); err != nil {
		return nil, err
	}
	if met.BadgesUnlocked, err = m.Int64Counter("persona.badges.unlocked",
		metric.WithDescription("Total badge unlocks by badge name."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("persona.active_sessions",
		metric.WithDescription("Number of recording sessions in flight."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("persona.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordCoachRequest records one remote coach call with the standard
// attribute set.
func (m *Metrics) RecordCoachRequest(ctx context.Context, backend, status string) {
	m.CoachRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("status", status),
		),
	)
}

// RecordCoachError records one remote coach failure.
func (m *Metrics) RecordCoachError(ctx context.Context, backend string) {
	m.CoachErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}

// RecordBadgeUnlocked records one badge unlock.
func (m *Metrics) RecordBadgeUnlocked(ctx context.Context, badge string) {
	m.BadgesUnlocked.Add(ctx, 1,
		metric.WithAttributes(attribute.String("badge", badge)),
	)
}
