// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package cmd holds the pieces shared by the scc-benchmark and
// scc-perf-client command lines
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/southcitycomputer/scc-perf/log"
)

// ExitError makes Execute exit with Code. A nil Err means the failure was
// already reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// LogFlags are the logging flags common to both binaries
type LogFlags struct {
	Level   string
	Verbose bool
}

// Register adds --log-level and -v/--verbose as persistent flags of c
func (f *LogFlags) Register(c *cobra.Command) {
	c.PersistentFlags().StringVarP(&f.Level, "log-level", "l", "warn", "Log level (error, warn, info, debug, trace)")
	c.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "verbose")
}

// Apply configures the log package. -v raises the level to at least debug and
// never lowers an explicit trace.
func (f *LogFlags) Apply() error {
	level, err := log.ParseLogLevel(f.Level)
	if err != nil {
		return err
	}
	if f.Verbose && level < log.LevelDebug {
		level = log.LevelDebug
	}
	log.SetLogLevel(level)
	return nil
}

// Run executes root until it returns or an interrupt arrives and returns the
// process exit code
func Run(root *cobra.Command, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root.SilenceErrors = true
	root.SilenceUsage = true
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %s\n", err)
	return 1
}

// Execute runs root and exits the process with its exit code
func Execute(root *cobra.Command) {
	os.Exit(Run(root, os.Stderr))
}
