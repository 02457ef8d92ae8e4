// Package metrics provides Prometheus instrumentation for the offer engine.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Reconciliations counts reconciliation passes by result (ok, error).
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_reconciliations_total",
		Help: "Total number of offer reconciliation passes",
	}, []string{"result"})

	// ReconcileLatency tracks end-to-end reconciliation latency.
	ReconcileLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "offer_reconcile_latency_seconds",
		Help:    "Offer reconciliation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// AssetClassifications counts per-asset verdicts.
	AssetClassifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_asset_classifications_total",
		Help: "Offered asset classifications by asset kind",
	}, []string{"kind", "classification"})

	// BalanceLookupLatency tracks wallet balance reads.
	BalanceLookupLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "offer_balance_lookup_seconds",
		Help:    "Wallet balance lookup latency in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"result"})

	// NFTDriverBuilds counts NFT driver constructions.
	NFTDriverBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_nft_driver_builds_total",
		Help: "NFT driver builds by result",
	}, []string{"result"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "offer_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "offer_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Route pattern keeps nft ids out of the label set.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("metrics: response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
