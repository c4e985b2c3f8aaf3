// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/southcitycomputer/scc-perf/result"
)

const (
	resultWidth = 61
	bannerWidth = 63
)

// SuiteBanner is printed before the full benchmark suite
func SuiteBanner(w io.Writer, host string, requests, concurrency int) {
	b := newBox(w, bannerWidth, doubleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("     SOUTH CITY COMPUTER - Performance Benchmark Suite")
	b.sep()
	b.line("  Target: %s", host)
	b.line("  Requests per test: %6d", requests)
	b.line("  Concurrency: %6d", concurrency)
	b.close()
}

// BenchmarkRun prints the result box of one endpoint
func BenchmarkRun(w io.Writer, run *result.BenchmarkRun) {
	s := run.Summary
	b := newBox(w, resultWidth, singleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("  %s", run.Name)
	b.sep()
	b.line("  Requests:     %10d total, %10d ok, %6d fail", s.Total, s.Successful, s.Failed)
	b.line("  Throughput:   %10.2f req/s", run.Throughput)
	b.line("  Data:         %10s", FormatBytes(s.Bytes))
	b.sep()
	b.line("  Latency:")
	b.line("    Min:        %10s", FormatLatency(s.MinLatency))
	b.line("    Avg:        %10s", FormatLatency(s.AvgLatency))
	b.line("    Max:        %10s", FormatLatency(s.MaxLatency))
	b.close()
}

// PageLoadBanner introduces the full page load simulation
func PageLoadBanner(w io.Writer) {
	b := newBox(w, bannerWidth, doubleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("  Full Page Load Simulation (Above-the-fold assets)")
	b.close()
}

// PageLoad prints the page load box, the failures are listed first
func PageLoad(w io.Writer, page *result.PageLoadResult) {
	for _, failure := range page.Failures {
		fmt.Fprintf(w, "  Failed to load %s: %s\n", failure.Path, failure.Message)
	}
	status := "SUCCESS"
	if !page.Succeeded() {
		status = "FAILED"
	}

	b := newBox(w, resultWidth, singleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("  Full Page Load Results")
	b.sep()
	b.line("  Assets loaded:   %5d", page.Assets)
	b.line("  Total size:      %10s", FormatBytes(page.TotalBytes))
	b.line("  Load time:       %10s", FormatLatency(page.Elapsed))
	b.line("  Status:          %10s", status)
	b.close()
}

// Complete closes the full suite with the page load rating
func Complete(w io.Writer, pageLoad time.Duration) {
	rating := PageLoadRating(pageLoad)
	b := newBox(w, bannerWidth, doubleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("  BENCHMARK COMPLETE")
	b.sep()
	b.line("  Rating: %s %s (%s)", rating.Stars, rating.Label, rating.Note)
	b.close()
	fmt.Fprintln(w)
}

// QuickHeader announces the connectivity test
func QuickHeader(w io.Writer, host string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Quick connectivity test to %s...\n", host)
}

// QuickResult prints ✓ with the latency, or ✗ with the error
func QuickResult(w io.Writer, latency time.Duration, err error) {
	if err != nil {
		fmt.Fprintf(w, "✗ Server not responding: %s\n", err)
		return
	}
	fmt.Fprintf(w, "✓ Server responding - latency: %s\n", FormatLatency(latency))
}
