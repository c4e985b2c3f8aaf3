// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package loadgen drives concurrent request load against one host
package loadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/southcitycomputer/scc-perf/common"
)

// Config holds the parameters of a benchmark run. It is built once from
// flags and never mutated while workers run.
type Config struct {
	// Host is host:port
	Host        string
	Requests    int
	Concurrency int
	Warmup      bool
	Verbose     bool
	// Timeout bounds the whole run, zero means no deadline
	Timeout time.Duration
}

// DefaultConfig returns the stock configuration against the local server
func DefaultConfig() Config {
	return Config{
		Host:        common.DefaultHost,
		Requests:    common.DefaultRequests,
		Concurrency: common.DefaultConcurrency,
		Warmup:      true,
	}
}

// Validate rejects configurations that cannot start any worker
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Requests < 0 {
		return fmt.Errorf("requests must not be negative, got %d", c.Requests)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// RequestsPerWorker is Requests / Concurrency, the remainder is not issued
func (c Config) RequestsPerWorker() int {
	if c.Concurrency <= 0 {
		return 0
	}
	return c.Requests / c.Concurrency
}

// WithDeadline bounds ctx by Timeout when one is set
func (c Config) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}
