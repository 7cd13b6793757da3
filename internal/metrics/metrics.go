// Package metrics registers the Prometheus collectors the HTTP layer and
// the service emit. Registration is idempotent so tests can build the set
// more than once against the default registerer.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	insightRebuilds prometheus.Counter
	insightPartials prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer builds the collector set against a specific
// registerer; tests use it with an isolated registry.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		httpRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "teaops_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		}, []string{"route", "status"}),
		httpDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "teaops_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		submissions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "teaops_invoice_submissions_total",
			Help: "Invoice submissions by outcome",
		}, []string{"outcome"}),
		insightRebuilds: registerCounter(registerer, prometheus.CounterOpts{
			Name: "teaops_insight_rebuilds_total",
			Help: "Total dashboard insight recomputations",
		}),
		insightPartials: registerCounter(registerer, prometheus.CounterOpts{
			Name: "teaops_insight_partial_results_total",
			Help: "Dashboard responses served with degraded slices",
		}),
		cacheHits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "teaops_insight_cache_hits_total",
			Help: "Dashboard insight cache hits",
		}),
		cacheMisses: registerCounter(registerer, prometheus.CounterOpts{
			Name: "teaops_insight_cache_misses_total",
			Help: "Dashboard insight cache misses",
		}),
	}
}

func (m *Metrics) RecordHTTPRequest(route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, fmt.Sprintf("%d", status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordInsightRebuild() {
	m.insightRebuilds.Inc()
}

func (m *Metrics) RecordInsightPartial() {
	m.insightPartials.Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// Submission outcomes. Rejected is a client-input problem, failed is a
// backend fault; orphaned is a failed compensation on top of that.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeOrphaned  = "orphaned"
)
