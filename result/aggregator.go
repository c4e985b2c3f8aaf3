// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package result

import (
	"math"
	"sync/atomic"
	"time"
)

// BenchmarkResults aggregates request outcomes from any number of workers.
// Every field is updated independently with atomic operations, no mutex is involved.
type BenchmarkResults struct {
	totalRequests      atomic.Uint64
	successfulRequests atomic.Uint64
	failedRequests     atomic.Uint64
	totalBytes         atomic.Uint64
	totalLatencyUs     atomic.Uint64
	minLatencyUs       atomic.Uint64
	maxLatencyUs       atomic.Uint64
}

// NewBenchmarkResults returns an empty aggregate. The minimum starts at the
// largest representable value so the first recorded latency always replaces it.
func NewBenchmarkResults() *BenchmarkResults {
	r := &BenchmarkResults{}
	r.minLatencyUs.Store(math.MaxUint64)
	return r
}

// RecordSuccess accounts for one successful request
func (r *BenchmarkResults) RecordSuccess(latency time.Duration, bytes uint64) {
	us := uint64(latency.Microseconds())
	r.totalRequests.Add(1)
	r.successfulRequests.Add(1)
	r.totalBytes.Add(bytes)
	r.totalLatencyUs.Add(us)

	storeIfLower(&r.minLatencyUs, us)
	storeIfHigher(&r.maxLatencyUs, us)
}

// RecordFailure accounts for one failed request
func (r *BenchmarkResults) RecordFailure() {
	r.totalRequests.Add(1)
	r.failedRequests.Add(1)
}

// storeIfLower retries the CAS until it wins or another writer stored an
// equal or lower value.
func storeIfLower(v *atomic.Uint64, sample uint64) {
	for cur := v.Load(); sample < cur; cur = v.Load() {
		if v.CompareAndSwap(cur, sample) {
			return
		}
	}
}

func storeIfHigher(v *atomic.Uint64, sample uint64) {
	for cur := v.Load(); sample > cur; cur = v.Load() {
		if v.CompareAndSwap(cur, sample) {
			return
		}
	}
}

// Snapshot reads the counters. It is only consistent once every worker
// recording into r has returned.
func (r *BenchmarkResults) Snapshot() Summary {
	s := Summary{
		Total:        r.totalRequests.Load(),
		Successful:   r.successfulRequests.Load(),
		Failed:       r.failedRequests.Load(),
		Bytes:        r.totalBytes.Load(),
		TotalLatency: time.Duration(r.totalLatencyUs.Load()) * time.Microsecond,
		MaxLatency:   time.Duration(r.maxLatencyUs.Load()) * time.Microsecond,
	}
	if s.Successful > 0 {
		s.MinLatency = time.Duration(r.minLatencyUs.Load()) * time.Microsecond
		s.AvgLatency = time.Duration(r.totalLatencyUs.Load()/s.Successful) * time.Microsecond
	}
	return s
}

// Summary is an immutable view of BenchmarkResults
type Summary struct {
	Total        uint64        `json:"total_requests"`
	Successful   uint64        `json:"successful_requests"`
	Failed       uint64        `json:"failed_requests"`
	Bytes        uint64        `json:"total_bytes"`
	TotalLatency time.Duration `json:"total_latency_ns"`
	MinLatency   time.Duration `json:"min_latency_ns"`
	AvgLatency   time.Duration `json:"avg_latency_ns"`
	MaxLatency   time.Duration `json:"max_latency_ns"`
}

// Throughput returns successful requests per second over elapsed
func (s Summary) Throughput(elapsed time.Duration) float64 {
	if elapsed.Seconds() <= 0 {
		return 0
	}
	return float64(s.Successful) / elapsed.Seconds()
}
