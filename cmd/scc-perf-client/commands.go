// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/southcitycomputer/scc-perf/cmd"
	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/probe"
	"github.com/southcitycomputer/scc-perf/report"
	"github.com/southcitycomputer/scc-perf/result"
	"github.com/southcitycomputer/scc-perf/server"
	"github.com/southcitycomputer/scc-perf/traceroute"
)

type args struct {
	json       bool
	reverseDns bool
	publicIP   bool
	addr       string
	logFlags   cmd.LogFlags
}

// testReport is the --json output of a full performance test
type testReport struct {
	result.PerformanceTest
	Summary result.PerformanceTestSummary `json:"summary"`
}

func newRootCommand(measurer server.Measurer, newTracer server.TracerFactory) *cobra.Command {
	a := &args{}

	root := &cobra.Command{
		Use:   "scc-perf-client [host]",
		Short: "South City Computer - Client Performance & Network Diagnostics",
		Long:  "Measures phase-by-phase HTTP timing and traces the network path to a host.\nA bare host argument runs the full performance test against it.",
		Args:  cobra.ArbitraryArgs,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return a.logFlags.Apply()
		},
		RunE: func(c *cobra.Command, positional []string) error {
			if len(positional) == 0 {
				return c.Help()
			}
			return runTest(c, a, measurer, positional[0])
		},
	}
	root.PersistentFlags().BoolVar(&a.json, "json", false, "Print results as JSON")
	a.logFlags.Register(root)

	traceCmd := &cobra.Command{
		Use:   "trace [host]",
		Short: "Trace and visualize the network route to host",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, positional []string) error {
			return runTrace(c, a, newTracer, hostArg(positional))
		},
	}
	traceCmd.Flags().BoolVar(&a.reverseDns, "reverse-dns", false, "Enrich hop IPs with reverse DNS names")
	traceCmd.Flags().BoolVar(&a.publicIP, "public-ip", false, "Look up the public IP of this machine")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagnostics as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			srv := server.NewServerWith(measurer, newTracer)
			log.Infof("Example usage: curl http://localhost%s/trace?target=%s", a.addr, common.DefaultTarget)
			return srv.Start(c.Context(), a.addr)
		},
	}
	// Default port 3765 is used for Remote Traceroute
	serveCmd.Flags().StringVarP(&a.addr, "addr", "a", common.DefaultServerAddr, "HTTP server address to listen on")

	root.AddCommand(
		&cobra.Command{
			Use:   "test [host]",
			Short: "Full performance test across the standard endpoints",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(c *cobra.Command, positional []string) error {
				return runTest(c, a, measurer, hostArg(positional))
			},
		},
		traceCmd,
		&cobra.Command{
			Use:   "measure <url>",
			Short: "Phase timing of a single URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, positional []string) error {
				return runMeasure(c, a, measurer, positional[0])
			},
		},
		serveCmd,
		cmd.NewVersionCommand("scc-perf-client"),
	)
	return root
}

func hostArg(positional []string) string {
	if len(positional) == 0 {
		return common.DefaultTarget
	}
	return positional[0]
}

func runTest(c *cobra.Command, a *args, measurer server.Measurer, host string) error {
	base, err := probe.ParseTarget(host)
	if err != nil {
		return err
	}
	out := c.OutOrStdout()

	if !a.json {
		report.TestBanner(out, host)
		fmt.Fprintf(out, "\nTesting %d endpoints...\n", len(common.DiagnosticEndpoints))
	}

	test := result.PerformanceTest{Target: host}
	for _, endpoint := range common.DiagnosticEndpoints {
		target := probe.Target{Host: base.Host, Port: base.Port, Path: endpoint.Path}
		m := result.EndpointMeasurement{Name: endpoint.Name, Path: endpoint.Path}
		metrics, err := measurer.Measure(c.Context(), target)
		if err != nil {
			log.Debugf("measuring %s failed: %s", target.URL(), err)
			m.Error = err.Error()
		} else {
			m.Metrics = metrics
		}
		test.Endpoints = append(test.Endpoints, m)
		if !a.json {
			report.EndpointProgress(out, m)
		}
	}

	if a.json {
		return report.JSON(out, testReport{PerformanceTest: test, Summary: test.Summary()})
	}
	if home, ok := test.Measurement(common.DiagnosticEndpoints[0].Name); ok && home.Metrics != nil {
		report.Metrics(out, home.Metrics)
	}
	report.TestSummary(out, test)
	return nil
}

func runTrace(c *cobra.Command, a *args, newTracer server.TracerFactory, host string) error {
	out := c.OutOrStdout()
	if !a.json {
		fmt.Fprintf(out, "Running traceroute to %s...\n\n", host)
	}

	tracer := newTracer(traceroute.Options{ReverseDNS: a.reverseDns, CollectSourcePublicIP: a.publicIP})
	diag, err := tracer.Trace(c.Context(), host)
	if err != nil {
		return err
	}

	if a.json {
		return report.JSON(out, diag)
	}
	report.Route(out, diag)
	return nil
}

func runMeasure(c *cobra.Command, a *args, measurer server.Measurer, raw string) error {
	target, err := probe.ParseTarget(raw)
	if err != nil {
		return err
	}
	metrics, err := measurer.Measure(c.Context(), target)
	if err != nil {
		return err
	}

	if a.json {
		return report.JSON(c.OutOrStdout(), metrics)
	}
	report.Metrics(c.OutOrStdout(), metrics)
	return nil
}
