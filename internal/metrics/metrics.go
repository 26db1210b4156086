// Package metrics holds the Prometheus collectors shared by the API client
// and the dev server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple clients never
// collide on the default one.
type Collector struct {
	registry *prometheus.Registry

	ClientRequests        *prometheus.CounterVec
	ClientRequestDuration *prometheus.HistogramVec
	ServerRequests        *prometheus.CounterVec
}

// New registers every collector under namespace.
func New(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		ClientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_requests_total",
			Help:      "Total number of admin API requests issued by the client",
		}, []string{"resource", "method", "outcome"}),
		ClientRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_request_duration_seconds",
			Help:      "Duration of admin API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
		ServerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "devserver_requests_total",
			Help:      "Total number of requests served by the dev API server",
		}, []string{"route", "method", "status_code"}),
	}
	reg.MustRegister(c.ClientRequests, c.ClientRequestDuration, c.ServerRequests)
	return c
}

// ObserveClient records one finished client request. A nil collector is a no-op.
func (c *Collector) ObserveClient(resource, method, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.ClientRequests.WithLabelValues(resource, method, outcome).Inc()
	c.ClientRequestDuration.WithLabelValues(resource, method).Observe(d.Seconds())
}

func (c *Collector) ObserveServer(route, method string, status int) {
	if c == nil {
		return
	}
	c.ServerRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
