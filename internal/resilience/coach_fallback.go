package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/yashas004/persona/internal/observe"
	"github.com/yashas004/persona/pkg/provider/coach"
)

// ErrAllBackendsFailed is returned by [CoachFallback.Feedback] when every
// registered backend fails or has an open circuit breaker. Callers treat it
// as the signal to use the local heuristic.
var ErrAllBackendsFailed = errors.New("all coach backends failed")

// coachEntry pairs a coach backend with its dedicated circuit breaker.
type coachEntry struct {
	name    string
	client  coach.Client
	breaker *CircuitBreaker
}

// CoachFallback implements [coach.Client] with automatic failover across
// multiple remote feedback backends. Each backend has its own circuit
// breaker; when the primary fails or its breaker is open, the next healthy
// backend is tried in registration order.
type CoachFallback struct {
	entries []coachEntry
	cbCfg   CircuitBreakerConfig
	obs     *observe.Metrics
}

var _ coach.Client = (*CoachFallback)(nil)

// NewCoachFallback creates a [CoachFallback] with primary as the preferred
// backend. cbCfg configures the per-backend circuit breakers (Name is set
// per entry).
func NewCoachFallback(primary coach.Client, primaryName string, cbCfg CircuitBreakerConfig) *CoachFallback {
	cf := &CoachFallback{cbCfg: cbCfg, obs: observe.DefaultMetrics()}
	cf.add(primaryName, primary)
	return cf
}

// AddFallback registers an additional backend. Fallbacks are tried in the
// order they are added, after the primary.
func (cf *CoachFallback) AddFallback(name string, client coach.Client) {
	cf.add(name, client)
}

func (cf *CoachFallback) add(name string, client coach.Client) {
	cfg := cf.cbCfg
	cfg.Name = name
	cf.entries = append(cf.entries, coachEntry{
		name:    name,
		client:  client,
		breaker: NewCircuitBreaker(cfg),
	})
}

// Feedback sends the request to the first healthy backend and returns its
// report. Backends with open breakers are skipped. Returns
// [ErrAllBackendsFailed] wrapped with the last error when nothing succeeds.
func (cf *CoachFallback) Feedback(ctx context.Context, req coach.Request) (*coach.Report, error) {
	var lastErr error
	for i := range cf.entries {
		entry := &cf.entries[i]
		var report *coach.Report
		start := time.Now()
		err := entry.breaker.Execute(func() error {
			var innerErr error
			report, innerErr = entry.client.Feedback(ctx, req)
			return innerErr
		})
		if err == nil {
			cf.obs.CoachDuration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(observe.Attr("backend", entry.name)))
			cf.obs.RecordCoachRequest(ctx, entry.name, "success")
			return report, nil
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping coach backend (circuit open)", "backend", entry.name)
			continue
		}
		cf.obs.CoachDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(observe.Attr("backend", entry.name)))
		cf.obs.RecordCoachRequest(ctx, entry.name, "error")
		cf.obs.RecordCoachError(ctx, entry.name)
		slog.Warn("coach backend failed, trying next", "backend", entry.name, "error", err)
	}
	return nil, fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}
