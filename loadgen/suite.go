// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package loadgen

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/probe"
	"github.com/southcitycomputer/scc-perf/result"
)

// Runner runs the benchmark suites on top of a Dispatcher
type Runner struct {
	config     Config
	requester  Requester
	dispatcher *Dispatcher
	// Progress receives the verbose progress lines, nil disables them
	Progress io.Writer
}

// NewRunner returns a runner; observers see every timed (non-warmup) sample
func NewRunner(config Config, requester Requester, observers ...Observer) (*Runner, error) {
	dispatcher, err := NewDispatcher(config, requester, observers...)
	if err != nil {
		return nil, err
	}
	return &Runner{
		config:     config,
		requester:  requester,
		dispatcher: dispatcher,
	}, nil
}

// Config returns the configuration of the runner
func (r *Runner) Config() Config {
	return r.config
}

func (r *Runner) progressf(format string, args ...any) {
	if r.config.Verbose && r.Progress != nil {
		fmt.Fprintf(r.Progress, format+"\n", args...)
	}
}

// RunEndpoint warms the endpoint up when configured, then dispatches the timed load
func (r *Runner) RunEndpoint(ctx context.Context, endpoint common.Endpoint) *result.BenchmarkRun {
	if r.config.Warmup {
		r.progressf("  Warming up %s (%d requests)...", endpoint.Name, common.WarmupRequests)
		for i := 0; i < common.WarmupRequests && ctx.Err() == nil; i++ {
			if _, err := r.requester.Execute(context.WithoutCancel(ctx), r.config.Host, endpoint.Path); err != nil {
				log.Tracef("warmup request to %s failed: %s", endpoint.Path, err)
			}
		}
	}

	r.progressf("  Benchmarking %s (%d requests, %d concurrent)...", endpoint.Name, r.config.Requests, r.config.Concurrency)
	results := result.NewBenchmarkResults()
	start := time.Now()
	r.dispatcher.Run(ctx, endpoint.Name, endpoint.Path, results)
	elapsed := time.Since(start)

	summary := results.Snapshot()
	return &result.BenchmarkRun{
		RunID:      result.NewRunID(),
		Name:       endpoint.Name,
		Path:       endpoint.Path,
		Summary:    summary,
		Elapsed:    elapsed,
		Throughput: summary.Throughput(elapsed),
	}
}

// RunSuite benchmarks the endpoints in order and stops early once ctx ends.
// each, when set, is called after every endpoint completes.
func (r *Runner) RunSuite(ctx context.Context, endpoints []common.Endpoint, each func(*result.BenchmarkRun)) []*result.BenchmarkRun {
	runs := make([]*result.BenchmarkRun, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			log.Infof("benchmark interrupted, skipping remaining endpoints")
			break
		}
		run := r.RunEndpoint(ctx, endpoint)
		runs = append(runs, run)
		if each != nil {
			each(run)
		}
	}
	return runs
}

// RunPageLoad fetches the assets sequentially, as a browser's critical path would.
// Once ctx ends the remaining assets are recorded as failures without a request.
func (r *Runner) RunPageLoad(ctx context.Context, assets []string) *result.PageLoadResult {
	page := &result.PageLoadResult{Assets: len(assets)}
	start := time.Now()
	for _, path := range assets {
		if err := ctx.Err(); err != nil {
			page.Failures = append(page.Failures, result.AssetFailure{Path: path, Message: "skipped: " + err.Error()})
			continue
		}
		resp, err := r.requester.Execute(context.WithoutCancel(ctx), r.config.Host, path)
		if err != nil {
			page.Failures = append(page.Failures, result.AssetFailure{Path: path, Message: err.Error()})
			continue
		}
		page.TotalBytes += uint64(resp.Bytes)
	}
	page.Elapsed = time.Since(start)
	return page
}

// Quick issues a single request to the health endpoint
func (r *Runner) Quick(ctx context.Context) (probe.Response, error) {
	return r.requester.Execute(ctx, r.config.Host, common.HealthPath)
}
