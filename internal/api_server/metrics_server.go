package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/dtapi/booking-coordinator/pkg/log"
	"github.com/dtapi/booking-coordinator/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type MetricServer struct {
	bindAddress string
	httpServer  *http.Server
	listener    net.Listener
	reporter    *metrics.StatusReporter
}

// NewMetricServer serves /metrics. When reporter is set the job status gauge is refreshed while the server runs.
func NewMetricServer(bindAddress string, listener net.Listener, reporter *metrics.StatusReporter) *MetricServer {
	router := chi.NewRouter()
	router.Use(log.Logger(zap.L(), "metrics_server"))
	router.Handle("/metrics", promhttp.Handler())

	return &MetricServer{
		bindAddress: bindAddress,
		listener:    listener,
		reporter:    reporter,
		httpServer: &http.Server{
			Addr:    bindAddress,
			Handler: router,
		},
	}
}

func (m *MetricServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		m.httpServer.SetKeepAlivesEnabled(false)
		_ = m.httpServer.Shutdown(ctxTimeout)
		zap.S().Named("metrics_server").Info("metrics server terminated")
	}()

	if m.reporter != nil {
		go m.reporter.Run(ctx)
	}

	zap.S().Named("metrics_server").Infof("serving metrics: %s", m.bindAddress)
	if err := m.httpServer.Serve(m.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
