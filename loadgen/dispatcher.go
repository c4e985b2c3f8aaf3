// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package loadgen

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/probe"
	"github.com/southcitycomputer/scc-perf/result"
)

// Requester performs one request against host
type Requester interface {
	Execute(ctx context.Context, host, path string) (probe.Response, error)
}

// Sample is one request outcome as seen by observers
type Sample struct {
	Endpoint string
	Path     string
	Start    time.Time
	Latency  time.Duration
	Bytes    uint64
	Err      error
}

// Observer receives every sample of a dispatch. Implementations are called
// from many goroutines at once.
type Observer interface {
	Observe(Sample)
}

// Dispatcher fans requests out over Concurrency workers
type Dispatcher struct {
	config    Config
	requester Requester
	observers []Observer
}

// NewDispatcher validates config and returns a dispatcher
func NewDispatcher(config Config, requester Requester, observers ...Observer) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{
		config:    config,
		requester: requester,
		observers: observers,
	}, nil
}

// Run issues RequestsPerWorker requests from each worker and returns once
// every worker has stopped. When ctx ends, workers finish their in-flight
// request and issue no new one.
func (d *Dispatcher) Run(ctx context.Context, name, path string, results *result.BenchmarkResults) {
	var running atomic.Bool
	running.Store(true)
	stop := context.AfterFunc(ctx, func() {
		running.Store(false)
	})
	defer stop()

	perWorker := d.config.RequestsPerWorker()
	requestCtx := context.WithoutCancel(ctx)
	log.Debugf("dispatching %s: %d workers x %d requests", path, d.config.Concurrency, perWorker)

	var g errgroup.Group
	for w := 0; w < d.config.Concurrency; w++ {
		g.Go(func() error {
			for i := 0; i < perWorker && running.Load() && ctx.Err() == nil; i++ {
				d.issue(requestCtx, name, path, results)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) issue(ctx context.Context, name, path string, results *result.BenchmarkResults) {
	start := time.Now()
	resp, err := d.requester.Execute(ctx, d.config.Host, path)
	latency := resp.Latency
	if err != nil {
		results.RecordFailure()
		latency = time.Since(start)
	} else {
		results.RecordSuccess(resp.Latency, uint64(resp.Bytes))
	}

	if len(d.observers) == 0 {
		return
	}
	sample := Sample{
		Endpoint: name,
		Path:     path,
		Start:    start,
		Latency:  latency,
		Bytes:    uint64(resp.Bytes),
		Err:      err,
	}
	for _, o := range d.observers {
		o.Observe(sample)
	}
}
