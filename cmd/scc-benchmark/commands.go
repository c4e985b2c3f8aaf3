// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/southcitycomputer/scc-perf/cmd"
	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/export"
	"github.com/southcitycomputer/scc-perf/loadgen"
	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/metrics"
	"github.com/southcitycomputer/scc-perf/report"
	"github.com/southcitycomputer/scc-perf/result"
)

var errEndpointUsage = errors.New("endpoint command requires a path\nUsage: scc-benchmark endpoint /path/to/resource")

type args struct {
	host        string
	requests    int
	concurrency int
	noWarmup    bool
	timeout     time.Duration
	json        bool
	metricsAddr string
	samples     string
	logFlags    cmd.LogFlags
}

func (a *args) config() loadgen.Config {
	return loadgen.Config{
		Host:        a.host,
		Requests:    a.requests,
		Concurrency: a.concurrency,
		Warmup:      !a.noWarmup,
		Verbose:     a.logFlags.Verbose,
		Timeout:     a.timeout,
	}
}

// fullReport is the --json output of the full suite
type fullReport struct {
	Host     string                 `json:"host"`
	Runs     []*result.BenchmarkRun `json:"runs"`
	PageLoad *result.PageLoadResult `json:"page_load"`
}

// quickReport is the --json output of the quick test
type quickReport struct {
	Host      string  `json:"host"`
	OK        bool    `json:"ok"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func newRootCommand(requester loadgen.Requester) *cobra.Command {
	a := &args{}

	root := &cobra.Command{
		Use:   "scc-benchmark [command]",
		Short: "South City Computer - Performance Benchmark Tool",
		Long:  "Concurrent HTTP load generator for the South City Computer web server.\nA bare /path argument benchmarks that single endpoint.",
		Args:  cobra.ArbitraryArgs,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return a.logFlags.Apply()
		},
		RunE: func(c *cobra.Command, positional []string) error {
			if path, ok := endpointArg(positional); ok {
				return runEndpoint(c, a, requester, path)
			}
			return runFull(c, a, requester)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.host, "host", "h", common.DefaultHost, "Target host")
	flags.IntVarP(&a.requests, "requests", "n", common.DefaultRequests, "Number of requests per test")
	flags.IntVarP(&a.concurrency, "concurrency", "c", common.DefaultConcurrency, "Concurrent connections")
	flags.BoolVarP(&a.noWarmup, "no-warmup", "w", false, "Skip warmup requests")
	flags.DurationVar(&a.timeout, "timeout", 0, "Overall deadline of the run, 0 for none")
	flags.BoolVar(&a.json, "json", false, "Print results as JSON")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	flags.StringVar(&a.samples, "samples", "", "Write every timed request to this parquet file")
	// -h is the host flag, help is long-form only
	flags.Bool("help", false, "Show this help message")
	a.logFlags.Register(root)

	root.AddCommand(
		&cobra.Command{
			Use:   "full",
			Short: "Run full benchmark suite (default)",
			Args:  cobra.ArbitraryArgs,
			RunE: func(c *cobra.Command, positional []string) error {
				if path, ok := endpointArg(positional); ok {
					return runEndpoint(c, a, requester, path)
				}
				return runFull(c, a, requester)
			},
		},
		&cobra.Command{
			Use:   "quick",
			Short: "Quick connectivity test",
			Args:  cobra.ArbitraryArgs,
			RunE: func(c *cobra.Command, positional []string) error {
				if path, ok := endpointArg(positional); ok {
					return runEndpoint(c, a, requester, path)
				}
				return runQuick(c, a, requester)
			},
		},
		&cobra.Command{
			Use:   "endpoint <path>",
			Short: "Benchmark a single endpoint",
			Args:  cobra.ArbitraryArgs,
			RunE: func(c *cobra.Command, positional []string) error {
				if len(positional) == 0 || positional[0] == "" {
					return &cmd.ExitError{Code: 1, Err: errEndpointUsage}
				}
				return runEndpoint(c, a, requester, positional[0])
			},
		},
		cmd.NewVersionCommand("scc-benchmark"),
	)
	return root
}

// endpointArg returns the first /path argument. A path anywhere on the command
// line selects the single endpoint benchmark, whichever subcommand came first.
func endpointArg(positional []string) (string, bool) {
	for _, arg := range positional {
		if strings.HasPrefix(arg, "/") {
			return arg, true
		}
		log.Warnf("ignoring unknown argument %q", arg)
	}
	return "", false
}

// session is one configured run with its observers attached
type session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	runner   *loadgen.Runner
	exporter *metrics.Exporter
	samples  *export.ParquetExporter
	out      io.Writer
}

func newSession(c *cobra.Command, a *args, requester loadgen.Requester) (*session, error) {
	config := a.config()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &session{out: c.OutOrStdout()}
	var observers []loadgen.Observer
	if a.samples != "" {
		pe, err := export.NewParquetExporter(a.samples, config)
		if err != nil {
			return nil, err
		}
		s.samples = pe
		observers = append(observers, pe)
	}
	if a.metricsAddr != "" {
		s.exporter = metrics.NewExporter()
		s.exporter.SetConcurrency(config.Concurrency)
		observers = append(observers, s.exporter)
	}

	runner, err := loadgen.NewRunner(config, requester, observers...)
	if err != nil {
		s.closeSamples()
		return nil, err
	}
	runner.Progress = s.out
	if a.json {
		runner.Progress = c.ErrOrStderr()
	}
	s.runner = runner

	s.ctx, s.cancel = config.WithDeadline(c.Context())
	if s.exporter != nil {
		go func() {
			if err := s.exporter.Serve(s.ctx, a.metricsAddr); err != nil {
				log.Errorf("metrics server failed: %s", err)
			}
		}()
	}
	return s, nil
}

func (s *session) observeRun(run *result.BenchmarkRun) {
	if s.exporter != nil {
		s.exporter.SetThroughput(run.Name, run.Throughput)
	}
}

func (s *session) closeSamples() error {
	if s.samples == nil {
		return nil
	}
	if err := s.samples.Close(); err != nil {
		return err
	}
	log.Infof("wrote %d samples to %s (run %s)", s.samples.Written(), s.samples.FilePath(), s.samples.RunID())
	return nil
}

func (s *session) close() error {
	s.cancel()
	return s.closeSamples()
}

func runFull(c *cobra.Command, a *args, requester loadgen.Requester) error {
	s, err := newSession(c, a, requester)
	if err != nil {
		return err
	}

	if !a.json {
		report.SuiteBanner(s.out, a.host, a.requests, a.concurrency)
	}
	runs := s.runner.RunSuite(s.ctx, common.BenchmarkEndpoints, func(run *result.BenchmarkRun) {
		s.observeRun(run)
		if !a.json {
			report.BenchmarkRun(s.out, run)
		}
	})

	if !a.json {
		report.PageLoadBanner(s.out)
	}
	page := s.runner.RunPageLoad(s.ctx, common.CriticalAssets)

	if a.json {
		if err := report.JSON(s.out, fullReport{Host: a.host, Runs: runs, PageLoad: page}); err != nil {
			s.close()
			return err
		}
	} else {
		report.PageLoad(s.out, page)
		report.Complete(s.out, page.Elapsed)
	}
	return s.close()
}

func runEndpoint(c *cobra.Command, a *args, requester loadgen.Requester, path string) error {
	s, err := newSession(c, a, requester)
	if err != nil {
		return err
	}

	run := s.runner.RunEndpoint(s.ctx, common.Endpoint{Name: path, Path: path})
	s.observeRun(run)
	if a.json {
		if err := report.JSON(s.out, run); err != nil {
			s.close()
			return err
		}
	} else {
		report.BenchmarkRun(s.out, run)
	}
	return s.close()
}

func runQuick(c *cobra.Command, a *args, requester loadgen.Requester) error {
	s, err := newSession(c, a, requester)
	if err != nil {
		return err
	}
	defer s.close()

	if !a.json {
		report.QuickHeader(s.out, a.host)
	}
	resp, err := s.runner.Quick(s.ctx)
	if a.json {
		out := quickReport{Host: a.host, OK: err == nil}
		if err != nil {
			out.Error = err.Error()
		} else {
			out.LatencyMs = float64(resp.Latency) / float64(time.Millisecond)
		}
		if jsonErr := report.JSON(s.out, out); jsonErr != nil {
			return jsonErr
		}
	} else {
		report.QuickResult(s.out, resp.Latency, err)
	}
	if err != nil {
		return &cmd.ExitError{Code: 1}
	}
	return nil
}
