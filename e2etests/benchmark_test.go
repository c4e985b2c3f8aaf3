// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build e2etest

package e2etests

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/result"
)

func TestBenchmarkQuick(t *testing.T) {
	srv := newSiteServer(t)

	exitCode, stdout, _ := benchmarkBinary.run(t, "quick", "-h", srv.Addr())
	require.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "✓ Server responding - latency:")
	assert.Equal(t, 1, srv.Requests())
}

func TestBenchmarkQuickUnreachable(t *testing.T) {
	exitCode, stdout, _ := benchmarkBinary.run(t, "quick", "-h", freeAddr(t))
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stdout, "✗ Server not responding")
}

func TestBenchmarkImplicitEndpoint(t *testing.T) {
	srv := newSiteServer(t)

	exitCode, stdout, _ := benchmarkBinary.run(t, "/index.html", "-h", srv.Addr(), "-n", "40", "-c", "4", "-w", "--json")
	require.Equal(t, 0, exitCode)

	var run result.BenchmarkRun
	require.NoError(t, json.Unmarshal([]byte(stdout), &run))
	assert.Equal(t, "/index.html", run.Path)
	assert.Equal(t, uint64(40), run.Summary.Total)
	assert.Equal(t, uint64(40), run.Summary.Successful)
	assert.Positive(t, run.Throughput)
	assert.Equal(t, 40, srv.Requests())
}

func TestBenchmarkNonOKCountsAsFailure(t *testing.T) {
	srv := newSiteServer(t)

	exitCode, stdout, _ := benchmarkBinary.run(t, "endpoint", "/missing", "-h", srv.Addr(), "-n", "10", "-c", "5", "-w", "--json")
	require.Equal(t, 0, exitCode)

	var run result.BenchmarkRun
	require.NoError(t, json.Unmarshal([]byte(stdout), &run))
	assert.Equal(t, uint64(10), run.Summary.Failed)
	assert.Zero(t, run.Summary.Successful)
}

func TestBenchmarkFullSuiteWithSamples(t *testing.T) {
	srv := newSiteServer(t)
	samples := filepath.Join(t.TempDir(), "samples.parquet")

	exitCode, stdout, _ := benchmarkBinary.run(t, "full", "-h", srv.Addr(), "-n", "10", "-c", "2", "--samples", samples)
	require.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "BENCHMARK COMPLETE")
	assert.Contains(t, stdout, "Status:             SUCCESS")

	perEndpoint := 10 + common.WarmupRequests
	assert.Equal(t, len(common.BenchmarkEndpoints)*perEndpoint+len(common.CriticalAssets), srv.Requests())

	info, err := os.Stat(samples)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestBenchmarkEndpointWithoutPath(t *testing.T) {
	exitCode, _, stderr := benchmarkBinary.run(t, "endpoint")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "endpoint command requires a path")
}
