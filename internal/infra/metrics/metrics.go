package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	UpstreamRequestsTotal   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "upstream_requests_total", Help: "Upstream API calls by endpoint and outcome"}, []string{"endpoint", "outcome"})
	UpstreamLatencyMs       = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "upstream_latency_ms", Help: "Upstream API latency", Buckets: prometheus.ExponentialBuckets(5, 2, 12)}, []string{"endpoint"})
	SpreadsComputedTotal    = prometheus.NewCounter(prometheus.CounterOpts{Name: "spreads_computed_total", Help: "Spreads successfully computed"})
	SpreadsUnavailableTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "spreads_unavailable_total", Help: "Spread lookups that produced no value"})
	LastSpread              = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "last_spread", Help: "Last computed spread by market"}, []string{"market"})
	AlertsSetTotal          = prometheus.NewCounter(prometheus.CounterOpts{Name: "alerts_set_total", Help: "Alert spreads recorded"})
	AlertPollsTotal         = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "alert_polls_total", Help: "Alert polls by resulting status"}, []string{"status"})
	HTTPRequestsTotal       = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total", Help: "Served requests by route and status"}, []string{"route", "status"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		UpstreamRequestsTotal, UpstreamLatencyMs,
		SpreadsComputedTotal, SpreadsUnavailableTotal, LastSpread,
		AlertsSetTotal, AlertPollsTotal, HTTPRequestsTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
