package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fusiongraph"

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	pages           prometheus.Counter
	rounds          prometheus.Counter
	roundIDs        prometheus.Histogram
	hierarchies     *prometheus.CounterVec
	hierarchyNodes  prometheus.Histogram
	cacheOps        *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	events          *prometheus.CounterVec
	rejected        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_requests_total",
			Help:      "GraphQL operations by operation name and outcome.",
		}, []string{"operation", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graphql_request_duration_seconds",
			Help:      "GraphQL round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_pages_total",
			Help:      "Occurrence pages fetched in flat mode.",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_rounds_total",
			Help:      "Batched expansion rounds in lazy mode.",
		}),
		roundIDs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hierarchy_round_ids",
			Help:      "Component versions requested per expansion round.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		hierarchies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchies_total",
			Help:      "Assembled hierarchies by mode and outcome.",
		}, []string{"mode", "status"}),
		hierarchyNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hierarchy_nodes",
			Help:      "Nodes per assembled hierarchy.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Webhook events received by event type.",
		}, []string{"event_type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_rejected_total",
			Help:      "Webhook deliveries rejected by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.requests, m.requestDuration,
		m.pages, m.rounds, m.roundIDs, m.hierarchies, m.hierarchyNodes,
		m.cacheOps, m.cacheBytes,
		m.events, m.rejected,
	)
	return m
}

// Install registers m as the global hook implementation for every category.
func (m *Metrics) Install() {
	SetGraphQLHooks(m)
	SetHierarchyHooks(m)
	SetCacheHooks(m)
	SetWebhookHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnRequest(context.Context, string) {}

func (m *Metrics) OnResponse(_ context.Context, operation string, status int, d time.Duration, err error) {
	label := strconv.Itoa(status)
	if err != nil && status == 0 {
		label = "error"
	}
	m.requests.WithLabelValues(operation, label).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) OnPage(context.Context, int) { m.pages.Inc() }

func (m *Metrics) OnRound(_ context.Context, _ int, ids int) {
	m.rounds.Inc()
	m.roundIDs.Observe(float64(ids))
}

func (m *Metrics) OnComplete(_ context.Context, mode string, nodes int, _ time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.hierarchies.WithLabelValues(mode, status).Inc()
	if err == nil {
		m.hierarchyNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnEvent(_ context.Context, eventType string) {
	m.events.WithLabelValues(eventType).Inc()
}

func (m *Metrics) OnRejected(_ context.Context, reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

var (
	_ GraphQLHooks   = (*Metrics)(nil)
	_ HierarchyHooks = (*Metrics)(nil)
	_ CacheHooks     = (*Metrics)(nil)
	_ WebhookHooks   = (*Metrics)(nil)
)
