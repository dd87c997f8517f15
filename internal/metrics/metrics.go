package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InstrumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pivot_instruments_total", Help: "Instruments evaluated, by status"},
		[]string{"status"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pivot_signals_total", Help: "Detected pivot reversal signals"},
		[]string{"side", "pivot"},
	)
	OutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pivot_trade_outcomes_total", Help: "Simulated trade outcomes"},
		[]string{"outcome"},
	)
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pivot_provider_requests_total", Help: "Market data requests"},
		[]string{"timeframe", "status"},
	)
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "pivot_provider_request_seconds", Help: "Market data request latency", Buckets: prometheus.DefBuckets},
		[]string{"timeframe"},
	)
	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "pivot_batch_seconds", Help: "Duration of one orchestrator batch", Buckets: []float64{.5, 1, 2, 5, 10, 30, 60}},
	)
)

func init() {
	prometheus.MustRegister(InstrumentsTotal, SignalsTotal, OutcomesTotal, ProviderRequests, ProviderLatency, BatchDuration)
}

func Handler() http.Handler { return promhttp.Handler() }
