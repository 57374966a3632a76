package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/chronos-tachyon/piston/internal/config"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server exposes the codec over gRPC, together with the standard health
// service and, optionally, Prometheus metrics over HTTP
type Server struct {
	logger     logger.Logger
	config     *config.Config
	metrics    *Metrics
	health     *health.Server
	grpcServer *grpc.Server
}

// NewServer creates a Server. Nothing listens until Run or Serve is called
func NewServer(parentLogger logger.Logger, configuration *config.Config) (*Server, error) {
	if err := configuration.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid configuration")
	}

	newServer := &Server{
		logger:  parentLogger.GetChild("server"),
		config:  configuration,
		metrics: NewMetrics(),
		health:  health.NewServer(),
	}

	newServer.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(newServer.metrics.UnaryInterceptor))
	RegisterPistonServer(newServer.grpcServer, NewService(newServer.logger, newServer.metrics))
	healthpb.RegisterHealthServer(newServer.grpcServer, newServer.health)

	return newServer, nil
}

// Metrics returns the collectors recorded by this server
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run listens on the configured addresses and serves until ctx is cancelled or
// a listener fails
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.ServeAddr)
	if err != nil {
		return errors.Wrapf(err, "Failed to listen on %s", s.config.ServeAddr)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	if s.config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		metricsServer := &http.Server{
			Addr:              s.config.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		group.Go(func() error {
			s.logger.InfoWith("Serving metrics", "addr", s.config.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "Metrics server failed")
			}
			return nil
		})

		group.Go(func() error {
			<-groupCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	group.Go(func() error {
		return s.Serve(groupCtx, listener)
	})

	return group.Wait()
}

// Serve handles gRPC connections from listener until ctx is cancelled, then
// drains in-flight calls for at most the configured shutdown timeout
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		s.logger.InfoWith("Serving", "addr", listener.Addr().String())
		serveErr <- s.grpcServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		s.health.Shutdown()
		if err != nil {
			return errors.Wrap(err, "gRPC server failed")
		}
		return nil

	case <-ctx.Done():
	}

	s.logger.InfoWith("Shutting down", "timeout", s.config.ShutdownTimeout.String())
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(s.config.ShutdownTimeout):
		s.logger.Warn("Graceful shutdown timed out, closing remaining connections")
		s.grpcServer.Stop()
	}

	s.logger.Flush()
	return nil
}
