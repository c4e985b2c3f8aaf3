// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package metrics exposes load generator samples to Prometheus
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/southcitycomputer/scc-perf/loadgen"
	"github.com/southcitycomputer/scc-perf/log"
)

const namespace = "scc_benchmark"

// Exporter records every sample of a benchmark on its own registry
type Exporter struct {
	registry *prometheus.Registry

	latencyHistogram *prometheus.HistogramVec
	requestCounter   *prometheus.CounterVec
	bytesCounter     *prometheus.CounterVec
	concurrencyGauge prometheus.Gauge
	throughputGauge  *prometheus.GaugeVec
}

// NewExporter creates the collectors and registers them
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		latencyHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_latency_ms",
				Help:      "Request latency in milliseconds",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 16), // 250μs to ~8s
			},
			[]string{"endpoint"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"endpoint", "status"},
		),
		bytesCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "response_bytes_total",
				Help:      "Bytes received from successful requests",
			},
			[]string{"endpoint"},
		),
		concurrencyGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "concurrency",
				Help:      "Configured number of workers",
			},
		),
		throughputGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "throughput_rps",
				Help:      "Successful requests per second of the last completed run",
			},
			[]string{"endpoint"},
		),
	}

	e.registry.MustRegister(
		e.latencyHistogram,
		e.requestCounter,
		e.bytesCounter,
		e.concurrencyGauge,
		e.throughputGauge,
	)
	return e
}

// Registry returns the registry the collectors live in
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe implements loadgen.Observer. Failed requests are counted but not
// added to the latency histogram.
func (e *Exporter) Observe(s loadgen.Sample) {
	if s.Err != nil {
		e.requestCounter.WithLabelValues(s.Endpoint, "failure").Inc()
		return
	}
	e.requestCounter.WithLabelValues(s.Endpoint, "success").Inc()
	e.latencyHistogram.WithLabelValues(s.Endpoint).Observe(float64(s.Latency) / float64(time.Millisecond))
	e.bytesCounter.WithLabelValues(s.Endpoint).Add(float64(s.Bytes))
}

// SetConcurrency publishes the configured worker count
func (e *Exporter) SetConcurrency(concurrency int) {
	e.concurrencyGauge.Set(float64(concurrency))
}

// SetThroughput publishes the throughput of a completed endpoint run
func (e *Exporter) SetThroughput(endpoint string, rps float64) {
	e.throughputGauge.WithLabelValues(endpoint).Set(rps)
}

// Handler serves the registry in the Prometheus exposition format
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	log.Infof("serving Prometheus metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
