// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package main provides the scc-perf-client network diagnostics binary
package main

import (
	"github.com/southcitycomputer/scc-perf/cmd"
	"github.com/southcitycomputer/scc-perf/probe"
	"github.com/southcitycomputer/scc-perf/traceroute"
)

func main() {
	tracer := traceroute.NewSubprocessTracer(traceroute.Options{})
	cmd.Execute(newRootCommand(probe.NewPhaseTimer(), func(options traceroute.Options) traceroute.Tracer {
		return tracer.WithOptions(options)
	}))
}
