// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package e2etests contains end-to-end tests for the scc-benchmark and
// scc-perf-client binaries. The binaries are built once, then run against a
// raw HTTP server on the loopback interface. Run with `-tags e2etest`.
package e2etests
