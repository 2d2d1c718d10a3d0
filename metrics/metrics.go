// Package metrics exposes prometheus counters for ledger outcomes, limiter
// rejections, cache efficiency and sweeper work.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"menagerie/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "menagerie"

// Outcome labels
const (
	OutcomeOK                    = "ok"
	OutcomeInsufficientResources = "insufficient_resources"
	OutcomeNotOwned              = "not_owned"
	OutcomeProtected             = "protected"
	OutcomeConfiguration         = "configuration"
	OutcomeRateLimited           = "rate_limited"
	OutcomeAccountNotFound       = "account_not_found"
	OutcomeDailyClaimed          = "daily_claimed"
	OutcomeInvalidArgument       = "invalid_argument"
	OutcomeError                 = "error"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// ledger operations by operation kind and outcome
	LedgerOps *prometheus.CounterVec
	// ledger transaction latency by operation kind
	LedgerDuration *prometheus.HistogramVec
	// rejected calls
	RateLimited prometheus.Counter
	// projection cache lookups by projection and result (hit/miss)
	CacheLookups *prometheus.CounterVec
	// entries removed by idle sweepers, by sweeper
	SweptEntries *prometheus.CounterVec
}

// New creates the collectors without registering them
func New() *Metrics {
	return &Metrics{
		LedgerOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Ledger operations by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),
		LedgerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Ledger transaction latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Mutating calls rejected by the rate limiter",
			},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Projection cache lookups by projection and result",
			},
			[]string{"projection", "result"},
		),
		SweptEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swept_entries_total",
				Help:      "Entries removed by idle sweepers",
			},
			[]string{"sweeper"},
		),
	}
}

// Register registers every collector
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.LedgerOps,
		m.LedgerDuration,
		m.RateLimited,
		m.CacheLookups,
		m.SweptEntries,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordLedger records one ledger call
func (m *Metrics) RecordLedger(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.LedgerOps.WithLabelValues(operation, Outcome(err)).Inc()
	m.LedgerDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRateLimited records one rejected call
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// RecordCacheLookup records a projection cache hit or miss
func (m *Metrics) RecordCacheLookup(projection string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(projection, result).Inc()
}

// RecordSwept records entries removed by a sweeper
func (m *Metrics) RecordSwept(sweeper string, removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.SweptEntries.WithLabelValues(sweeper).Add(float64(removed))
}

// Outcome maps an error to its outcome label
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, models.ErrInsufficientResources):
		return OutcomeInsufficientResources
	case errors.Is(err, models.ErrNotOwned):
		return OutcomeNotOwned
	case errors.Is(err, models.ErrProtected):
		return OutcomeProtected
	case errors.Is(err, models.ErrConfiguration):
		return OutcomeConfiguration
	case errors.Is(err, models.ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, models.ErrAccountNotFound):
		return OutcomeAccountNotFound
	case errors.Is(err, models.ErrDailyAlreadyClaimed):
		return OutcomeDailyClaimed
	case errors.Is(err, models.ErrInvalidArgument):
		return OutcomeInvalidArgument
	default:
		return OutcomeError
	}
}

// Handler serves the registry in the prometheus text format
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
