package run

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupTelemetry installs the global metrics sink. The in-memory sink can be dumped
// with SIGUSR1, the prometheus one is scraped from addr when addr is set.
func setupTelemetry(logger hclog.Logger, addr string) (func(), error) {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	sinks := metrics.FanoutSink{inm}

	if addr != "" {
		promSink, err := prometheus.NewPrometheusSinkFrom(prometheus.PrometheusOpts{
			Name:       "wasm_vm_prometheus_sink",
			Expiration: 0,
		})
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, promSink)
	}

	metricsConf := metrics.DefaultConfig("wasm_vm")
	metricsConf.EnableHostname = false

	if _, err := metrics.NewGlobal(metricsConf, sinks); err != nil {
		return nil, err
	}

	if addr == "" {
		return func() {}, nil
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Prometheus server started", "addr", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus HTTP server ListenAndServe", "err", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Prometheus server shutdown", "err", err)
		}
	}, nil
}
