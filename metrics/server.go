package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the metrics server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// Start creates and starts a new Prometheus server serving the given
// gatherer on addr.
func Start(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	server := &Server{
		httpServer: httpServer,
		logger:     logger,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to serve Prometheus metrics", zap.Error(err))
		}
	}()

	logger.Info("Prometheus metrics server started", zap.String("address", addr))

	return server
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to stop the Prometheus metrics server", zap.Error(err))

		return
	}

	s.logger.Info("Prometheus metrics server stopped")
}
