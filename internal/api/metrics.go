package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	Operations  *prometheus.CounterVec
	Requests    *prometheus.HistogramVec
	TotalShares prometheus.Gauge
	Reserves    *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "operations_total",
			Help:      "Pool operations by kind and outcome.",
		}, []string{"op", "result"}),
		Requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		TotalShares: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "total_shares",
			Help:      "Outstanding liquidity shares.",
		}),
		Reserves: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "reserve",
			Help:      "Pool reserve per asset in base units.",
		}, []string{"asset"}),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Requests, m.TotalShares, m.Reserves)
	}
	return m
}
