// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package common holds the defaults and thresholds shared by the load
// generator and the network diagnostics client
package common

import "time"

// Load generator defaults
const (
	DefaultHost        = "127.0.0.1:9000"
	DefaultRequests    = 100
	DefaultConcurrency = 10
	WarmupRequests     = 10
	RequestReadTimeout = 30 * time.Second
)

// Diagnostics client defaults
const (
	DefaultTarget      = "southcitycomputer.com"
	DefaultHTTPPort    = 80
	ConnectTimeout     = 10 * time.Second
	UserAgent          = "SCC-PerfClient/1.0"
	DefaultServerAddr  = ":3765"
	DefaultMaxHops     = 30
	DefaultProbesCount = 3
	// DefaultProbeWait is the per-probe wait handed to the traceroute binary
	DefaultProbeWait = 2 * time.Second
	// MaxRouteMarkers caps the number of hop markers drawn on the route line
	MaxRouteMarkers = 15
)

// SlowHopThreshold marks a hop as slow when any of its samples exceeds it
const SlowHopThreshold = 100 * time.Millisecond

// Full page load rating bands
var PageLoadRatingBands = []time.Duration{
	100 * time.Millisecond,
	500 * time.Millisecond,
	1000 * time.Millisecond,
	2500 * time.Millisecond,
}

// Single measurement rating bands
var MeasurementRatingBands = []time.Duration{
	100 * time.Millisecond,
	300 * time.Millisecond,
	500 * time.Millisecond,
	1000 * time.Millisecond,
}

// Endpoint is a named path probed by the suites
type Endpoint struct {
	Name string
	Path string
}

// BenchmarkEndpoints is the fixed suite run by `scc-benchmark full`
var BenchmarkEndpoints = []Endpoint{
	{Name: "Homepage (HTML)", Path: "/"},
	{Name: "Health Check (JSON)", Path: "/health"},
	{Name: "CSS Stylesheet", Path: "/css/style.min.css"},
	{Name: "JavaScript", Path: "/js/main.min.js"},
	{Name: "Logo (small image)", Path: "/images/logo.webp"},
	{Name: "Storefront (medium image)", Path: "/images/storefront.webp"},
	{Name: "Service Page", Path: "/services/computer-repair.html"},
}

// CriticalAssets are the above-the-fold assets of the full page load simulation
var CriticalAssets = []string{
	"/",
	"/css/style.min.css",
	"/js/main.min.js",
	"/images/logo.webp",
	"/images/storefront.webp",
}

// DiagnosticEndpoints is the list measured by `scc-perf-client test`
var DiagnosticEndpoints = []Endpoint{
	{Name: "Homepage", Path: "/"},
	{Name: "Stylesheet", Path: "/css/style.min.css"},
	{Name: "JavaScript", Path: "/js/main.min.js"},
	{Name: "Logo Image", Path: "/images/logo.webp"},
	{Name: "Health Check", Path: "/health"},
}

// HealthPath is probed by the quick connectivity test
const HealthPath = "/health"
