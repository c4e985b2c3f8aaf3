package result

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

type (
	// BenchmarkRun is the outcome of benchmarking a single endpoint
	BenchmarkRun struct {
		RunID      string        `json:"run_id"`
		Name       string        `json:"name"`
		Path       string        `json:"path"`
		Summary    Summary       `json:"summary"`
		Elapsed    time.Duration `json:"elapsed_ns"`
		Throughput float64       `json:"throughput_rps"`
	}

	// PageLoadResult is the outcome of the sequential full page load simulation
	PageLoadResult struct {
		Assets     int            `json:"assets"`
		TotalBytes uint64         `json:"total_bytes"`
		Elapsed    time.Duration  `json:"elapsed_ns"`
		Failures   []AssetFailure `json:"failures,omitempty"`
	}

	// AssetFailure records why an asset of the page load failed
	AssetFailure struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	}

	// PerformanceMetrics is one phase-by-phase measurement, all timings in ms
	PerformanceMetrics struct {
		URL            string  `json:"url"`
		ResolvedIP     string  `json:"resolved_ip"`
		DNSLookupMs    float64 `json:"dns_lookup_ms"`
		TCPConnectMs   float64 `json:"tcp_connect_ms"`
		TLSHandshakeMs float64 `json:"tls_handshake_ms"`
		TTFBMs         float64 `json:"ttfb_ms"`
		DownloadMs     float64 `json:"download_ms"`
		TotalMs        float64 `json:"total_ms"`
		ResponseSize   int     `json:"response_size"`
		StatusCode     int     `json:"status_code"`
	}

	// EndpointMeasurement is one endpoint of a full performance test. Error is
	// set instead of Metrics when the measurement aborted.
	EndpointMeasurement struct {
		Name    string              `json:"name"`
		Path    string              `json:"path"`
		Metrics *PerformanceMetrics `json:"metrics,omitempty"`
		Error   string              `json:"error,omitempty"`
	}

	// PerformanceTest is the outcome of measuring every diagnostic endpoint of a host
	PerformanceTest struct {
		Target    string                `json:"target"`
		Endpoints []EndpointMeasurement `json:"endpoints"`
	}

	// PerformanceTestSummary aggregates the endpoints that could be measured
	PerformanceTestSummary struct {
		Tested     int     `json:"tested"`
		Successful int     `json:"successful"`
		TotalBytes int     `json:"total_bytes"`
		AvgTotalMs float64 `json:"avg_total_ms"`
	}

	// NetworkDiagnostics is a parsed network path to a target
	NetworkDiagnostics struct {
		Target     string     `json:"target"`
		ResolvedIP string     `json:"resolved_ip,omitempty"`
		PublicIP   string     `json:"source_public_ip,omitempty"`
		Hops       []TraceHop `json:"hops"`
		TotalHops  int        `json:"total_hops"`
		PacketLoss float64    `json:"packet_loss_pct"`
	}

	// TraceHop encapsulates information about a single
	// hop in a traceroute. An empty IP means no probe was answered.
	TraceHop struct {
		HopNumber int       `json:"hop"`
		IP        string    `json:"ip,omitempty"`
		Hostname  string    `json:"hostname,omitempty"`
		RTTs      []float64 `json:"rtts_ms"`
		IsTarget  bool      `json:"is_target"`
	}
)

// Succeeded reports whether every asset loaded
func (p PageLoadResult) Succeeded() bool {
	return len(p.Failures) == 0
}

// Summary counts every endpoint as tested; only HTTP 200 answers are successful
func (p PerformanceTest) Summary() PerformanceTestSummary {
	summary := PerformanceTestSummary{Tested: len(p.Endpoints)}
	measured := 0
	var totalMs float64
	for _, e := range p.Endpoints {
		if e.Metrics == nil {
			continue
		}
		measured++
		totalMs += e.Metrics.TotalMs
		summary.TotalBytes += e.Metrics.ResponseSize
		if e.Metrics.StatusCode == 200 {
			summary.Successful++
		}
	}
	if measured > 0 {
		summary.AvgTotalMs = totalMs / float64(measured)
	}
	return summary
}

// Measurement returns the measurement of the endpoint called name
func (p PerformanceTest) Measurement(name string) (EndpointMeasurement, bool) {
	for _, e := range p.Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return EndpointMeasurement{}, false
}

// Responded reports whether the hop answered with an address
func (h TraceHop) Responded() bool {
	return h.IP != ""
}

// AvgRTT returns the mean of the samples, false when there are none
func (h TraceHop) AvgRTT() (float64, bool) {
	if len(h.RTTs) == 0 {
		return 0, false
	}
	var sum float64
	for _, rtt := range h.RTTs {
		sum += rtt
	}
	return sum / float64(len(h.RTTs)), true
}

// IsSlow reports whether any sample exceeds threshold
func (h TraceHop) IsSlow(threshold time.Duration) bool {
	limit := float64(threshold) / float64(time.Millisecond)
	for _, rtt := range h.RTTs {
		if rtt > limit {
			return true
		}
	}
	return false
}

// Normalize computes the hop count and packet loss from Hops
func (d *NetworkDiagnostics) Normalize() {
	d.TotalHops = len(d.Hops)
	if d.TotalHops == 0 {
		d.PacketLoss = 0
		return
	}
	var unanswered int
	for _, hop := range d.Hops {
		if !hop.Responded() {
			unanswered++
		}
	}
	d.PacketLoss = float64(unanswered) / float64(d.TotalHops) * 100
}

// NewRunID returns a random UUID in unpadded URL-safe base64, 22 characters
func NewRunID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}
