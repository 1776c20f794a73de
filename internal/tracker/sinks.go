package tracker

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// --- Log sink ---

type logSink struct {
	logger *zap.Logger
}

// NewLogSink writes one structured line per request.
func NewLogSink(logger *zap.Logger) Sink {
	return &logSink{logger: logger}
}

func (s *logSink) Name() string { return "log" }

func (s *logSink) Record(_ context.Context, r domain.RequestRecord) error {
	s.logger.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.String("route", r.Route),
		zap.String("ip", r.ClientIP),
		zap.String("user-agent", r.UserAgent),
		zap.Int("status", r.Status),
		zap.Duration("latency", r.Latency),
		zap.Time("received", r.ReceivedAt),
	)
	return nil
}

// --- Store sink ---

type storeSink struct {
	requests repository.RequestRepository
}

// NewStoreSink persists records through a RequestRepository.
func NewStoreSink(requests repository.RequestRepository) Sink {
	return &storeSink{requests: requests}
}

func (s *storeSink) Name() string { return "store" }

func (s *storeSink) Record(ctx context.Context, r domain.RequestRecord) error {
	return s.requests.Insert(ctx, r)
}

// --- Metrics sink ---

type metricsSink struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsSink registers request counters and latency histograms on reg.
func NewMetricsSink(reg prometheus.Registerer) Sink {
	factory := promauto.With(reg)
	return &metricsSink{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gym_tracker",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gym_tracker",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (s *metricsSink) Name() string { return "metrics" }

func (s *metricsSink) Record(_ context.Context, r domain.RequestRecord) error {
	// Unmatched paths share one label value to keep cardinality bounded.
	route := r.Route
	if route == "" {
		route = "unmatched"
	}
	s.requests.WithLabelValues(r.Method, route, strconv.Itoa(r.Status)).Inc()
	s.duration.WithLabelValues(r.Method, route).Observe(r.Latency.Seconds())
	return nil
}
