package server

import (
	"context"
	"net/http"
	"path"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const metricsNamespace = "piston"

// Metrics holds the Prometheus collectors exported by the server. Each Metrics
// owns its own registry so that several servers can live in one process
type Metrics struct {
	Registry *prometheus.Registry

	requests         *prometheus.CounterVec
	bytesIn          *prometheus.CounterVec
	bytesOut         *prometheus.CounterVec
	compressionRatio prometheus.Histogram
}

// NewMetrics creates and registers the server collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Number of handled requests by method and gRPC status code",
		}, []string{"method", "code"}),
		bytesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "bytes_in_total",
			Help:      "Number of payload bytes received by method",
		}, []string{"method"}),
		bytesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "bytes_out_total",
			Help:      "Number of payload bytes returned by method",
		}, []string{"method"}),
		compressionRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "compression_ratio",
			Help:      "Packed size divided by input size for non-empty Compress requests",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 12),
		}),
	}

	m.Registry.MustRegister(m.requests, m.bytesIn, m.bytesOut, m.compressionRatio)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// UnaryInterceptor counts every unary call by method and resulting code
func (m *Metrics) UnaryInterceptor(ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler) (interface{}, error) {

	resp, err := handler(ctx, req)
	m.requests.WithLabelValues(path.Base(info.FullMethod), status.Code(err).String()).Inc()
	return resp, err
}

func (m *Metrics) observeCompress(in int, out int) {
	m.bytesIn.WithLabelValues("Compress").Add(float64(in))
	m.bytesOut.WithLabelValues("Compress").Add(float64(out))
	if in > 0 {
		m.compressionRatio.Observe(float64(out) / float64(in))
	}
}

func (m *Metrics) observeDecompress(in int, out int) {
	m.bytesIn.WithLabelValues("Decompress").Add(float64(in))
	m.bytesOut.WithLabelValues("Decompress").Add(float64(out))
}
