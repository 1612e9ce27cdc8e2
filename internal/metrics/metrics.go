package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CastingTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "troupe", Name: "casting_transitions_total", Help: "Committed casting lifecycle transitions",
	}, []string{"transition"})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "troupe", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "troupe", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "troupe", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(CastingTransitions, HTTPRequests, HTTPDuration, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRequest(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func IncTransition(transition string) { CastingTransitions.WithLabelValues(transition).Inc() }
