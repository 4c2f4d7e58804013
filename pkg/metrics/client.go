package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// ClientMetrics records what the storefront client does on the wire and in its cache.
type ClientMetrics struct {
	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// NewClientMetrics registers the client metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of backend requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Backend requests by outcome.",
	}, []string{"method", "route", "status"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Access token refresh attempts by outcome.",
	}, []string{"outcome"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimistic_mutations_total",
		Help:      "Optimistic cache mutations by resource and outcome.",
	}, []string{"resource", "outcome"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(requestDuration, requests, refreshes, mutations, cacheLookups)
	return &ClientMetrics{
		requestDuration: requestDuration,
		requests:        requests,
		refreshes:       refreshes,
		mutations:       mutations,
		cacheLookups:    cacheLookups,
	}
}

// ObserveRequest records one backend round trip. A zero status means the request never got a response.
func (c *ClientMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if c == nil || c.requests == nil {
		return
	}
	route = normalizeLabel(route)
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	c.requests.WithLabelValues(method, route, statusLabel(status)).Inc()
}

// IncRefresh counts a refresh attempt; outcome is "success" or "failure".
func (c *ClientMetrics) IncRefresh(outcome string) {
	if c == nil || c.refreshes == nil {
		return
	}
	c.refreshes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncMutation counts an optimistic mutation outcome for the named resource.
func (c *ClientMetrics) IncMutation(resource, outcome string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(resource), normalizeLabel(outcome)).Inc()
}

// IncCacheLookup counts a cache hit or miss.
func (c *ClientMetrics) IncCacheLookup(hit bool) {
	if c == nil || c.cacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func statusLabel(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
