package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "auditrelay"

// Registry owns the relay's collectors on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	EventsReceived     *prometheus.CounterVec
	EventsIgnored      *prometheus.CounterVec
	RecordsPublished   *prometheus.CounterVec
	PublishFailures    prometheus.Counter
	PublishLatency     prometheus.Histogram
	ReconcilerOutcomes *prometheus.CounterVec

	ingress   *IngressRateCounter
	published atomic.Uint64
	started   time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Gateway events received, by event type.",
		}, []string{"event"}),
		EventsIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ignored_total",
			Help:      "Events dropped before publishing, by reason.",
		}, []string{"reason"}),
		RecordsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Audit records delivered to the audit channel, by action kind.",
		}, []string{"kind"}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Audit records that could not be delivered.",
		}),
		PublishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Time to resolve the audit channel and send one record.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}),
		ReconcilerOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciler_outcomes_total",
			Help:      "Member removals by outcome (kick, leave, error, abandoned).",
		}, []string{"outcome"}),
		ingress: NewIngressRateCounter(),
		started: time.Now(),
	}

	r.reg.MustRegister(
		r.EventsReceived,
		r.EventsIgnored,
		r.RecordsPublished,
		r.PublishFailures,
		r.PublishLatency,
		r.ReconcilerOutcomes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Gatherer exposes the registry to the /metrics handler.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func (r *Registry) EventReceived(event string) {
	r.EventsReceived.WithLabelValues(event).Inc()
	r.ingress.Increment()
}

func (r *Registry) EventIgnored(reason string) {
	r.EventsIgnored.WithLabelValues(reason).Inc()
}

func (r *Registry) ReconcilerOutcome(outcome string) {
	r.ReconcilerOutcomes.WithLabelValues(outcome).Inc()
}

// ObservePublish records one publish attempt.
func (r *Registry) ObservePublish(kind string, elapsed time.Duration, err error) {
	r.PublishLatency.Observe(elapsed.Seconds())
	if err != nil {
		r.PublishFailures.Inc()
		return
	}
	r.RecordsPublished.WithLabelValues(kind).Inc()
	r.published.Add(1)
}

func (r *Registry) Published() uint64 {
	return r.published.Load()
}

// EventsReceivedTotal is the number of gateway events seen since start.
func (r *Registry) EventsReceivedTotal() uint64 {
	return r.ingress.GetCount()
}

func (r *Registry) IngressRate() float64 {
	return r.ingress.GetRate()
}

func (r *Registry) Uptime() time.Duration {
	return time.Since(r.started)
}

var GlobalRegistry *Registry

func InitGlobalRegistry() {
	GlobalRegistry = NewRegistry()
}

func GetRegistry() *Registry {
	if GlobalRegistry == nil {
		InitGlobalRegistry()
	}
	return GlobalRegistry
}
