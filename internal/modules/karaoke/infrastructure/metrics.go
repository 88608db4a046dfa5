package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// QueueMetrics exports gauges describing the latest projection.
type QueueMetrics struct {
	queueLength   prometheus.Gauge
	historyLength prometheus.Gauge
	pinned        prometheus.Gauge
	participants  prometheus.Gauge
	projections   prometheus.Counter
}

// NewQueueMetrics registers the queue metrics with reg.
func NewQueueMetrics(reg prometheus.Registerer) *QueueMetrics {
	factory := promauto.With(reg)

	return &QueueMetrics{
		queueLength: factory.NewGauge(prometheus.GaugeOpts{
			Name: "karaoke_queue_length",
			Help: "Number of open requests in the queue",
		}),
		historyLength: factory.NewGauge(prometheus.GaugeOpts{
			Name: "karaoke_history_length",
			Help: "Number of completed requests",
		}),
		pinned: factory.NewGauge(prometheus.GaugeOpts{
			Name: "karaoke_pinned_requests",
			Help: "Number of open requests with a manual position",
		}),
		participants: factory.NewGauge(prometheus.GaugeOpts{
			Name: "karaoke_participants",
			Help: "Number of participants with at least one request",
		}),
		projections: factory.NewCounter(prometheus.CounterOpts{
			Name: "karaoke_projections_total",
			Help: "Total number of recomputed projections",
		}),
	}
}

// Observe updates the gauges from a projection.
func (m *QueueMetrics) Observe(p domain.Projection) {
	pinned := 0
	for i := range p.OrderedQueue {
		if p.OrderedQueue[i].IsPinned() {
			pinned++
		}
	}

	m.queueLength.Set(float64(len(p.OrderedQueue)))
	m.historyLength.Set(float64(len(p.CompletedHistory)))
	m.pinned.Set(float64(pinned))
	m.participants.Set(float64(len(p.TimesPerformed)))
	m.projections.Inc()
}

// MetricsServer serves a registry over HTTP at /metrics.
type MetricsServer struct {
	server *http.Server
}

// StartMetricsServer starts serving gatherer on addr in the background.
func StartMetricsServer(addr string, gatherer prometheus.Gatherer) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s := &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)

	return s
}

// Close stops the server.
func (s *MetricsServer) Close(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
