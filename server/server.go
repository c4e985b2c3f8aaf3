// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package server exposes the network diagnostics as a JSON HTTP API
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/probe"
	"github.com/southcitycomputer/scc-perf/result"
	"github.com/southcitycomputer/scc-perf/traceroute"
)

// Measurer times the phases of one request
type Measurer interface {
	Measure(ctx context.Context, target probe.Target) (*result.PerformanceMetrics, error)
}

// TracerFactory returns a tracer applying options
type TracerFactory func(options traceroute.Options) traceroute.Tracer

// HealthResponse is the body of /health
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// Server is the HTTP server for the diagnostics API
type Server struct {
	measurer  Measurer
	newTracer TracerFactory
	started   time.Time
	now       func() time.Time
}

// NewServer creates a server backed by the real phase timer and traceroute
func NewServer() *Server {
	tracer := traceroute.NewSubprocessTracer(traceroute.Options{})
	return NewServerWith(probe.NewPhaseTimer(), func(options traceroute.Options) traceroute.Tracer {
		return tracer.WithOptions(options)
	})
}

// NewServerWith creates a server backed by measurer and newTracer
func NewServerWith(measurer Measurer, newTracer TracerFactory) *Server {
	return &Server{
		measurer:  measurer,
		newTracer: newTracer,
		started:   time.Now(),
		now:       time.Now,
	}
}

// MeasureHandler handles GET /measure?url=<url>
func (s *Server) MeasureHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, probe.ErrCodeInvalidRequest, "method not allowed")
		return
	}

	raw := getStringParam(r.URL.Query(), "url", "")
	if raw == "" {
		writeError(w, http.StatusBadRequest, probe.ErrCodeInvalidRequest, "missing required parameter: url")
		return
	}
	target, err := probe.ParseTarget(raw)
	if err != nil {
		writeClassifiedError(w, err)
		return
	}

	metrics, err := s.measurer.Measure(r.Context(), target)
	if err != nil {
		log.Debugf("measure %s failed: %s", raw, err)
		writeClassifiedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// TraceHandler handles GET /trace?target=<host>
func (s *Server) TraceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, probe.ErrCodeInvalidRequest, "method not allowed")
		return
	}

	params, err := parseTraceParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, probe.ErrCodeInvalidRequest, err.Error())
		return
	}

	ctx := r.Context()
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	diag, err := s.newTracer(params.Options).Trace(ctx, params.Target)
	if err != nil {
		log.Debugf("trace %s failed: %s", params.Target, err)
		writeClassifiedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

// HealthHandler handles GET and HEAD /health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, probe.ErrCodeInvalidRequest, "method not allowed")
		return
	}
	now := s.now()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: now.UTC().Format(time.RFC3339),
		Uptime:    now.Sub(s.started).Seconds(),
	})
}

// Handler routes the API endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/measure", s.MeasureHandler)
	mux.HandleFunc("/trace", s.TraceHandler)
	mux.HandleFunc("/health", s.HealthHandler)
	return mux
}

// Start serves the API on addr until ctx ends
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	log.Infof("Starting HTTP server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("failed to encode response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, code probe.ErrorCode, message string) {
	writeJSON(w, status, probe.ErrorResponse{Code: code, Message: message})
}

func writeClassifiedError(w http.ResponseWriter, err error) {
	classified := probe.ClassifyError(err)
	status := http.StatusInternalServerError
	if classified.Code == probe.ErrCodeInvalidRequest {
		status = http.StatusBadRequest
	}
	writeError(w, status, classified.Code, classified.Message)
}
