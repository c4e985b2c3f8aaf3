// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package traceroute

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/log"
)

//go:generate mockgen -source=runner.go -destination=mock_runner.go -package=traceroute

// Invocation is one external command line
type Invocation struct {
	Name string
	Args []string
}

func (i Invocation) String() string {
	return strings.Join(append([]string{i.Name}, i.Args...), " ")
}

// CommandRunner runs an invocation and returns its standard output
type CommandRunner interface {
	Run(ctx context.Context, inv Invocation) ([]byte, error)
}

// PrimaryInvocation is `traceroute -n -q 3 -w 2 <target>`
func PrimaryInvocation(target string) Invocation {
	return Invocation{
		Name: "traceroute",
		Args: []string{
			"-n",
			"-q", strconv.Itoa(common.DefaultProbesCount),
			"-w", strconv.Itoa(int(common.DefaultProbeWait.Seconds())),
			target,
		},
	}
}

// FallbackInvocation is `tracert -d -w 2000 <target>`
func FallbackInvocation(target string) Invocation {
	return Invocation{
		Name: "tracert",
		Args: []string{
			"-d",
			"-w", strconv.Itoa(int(common.DefaultProbeWait.Milliseconds())),
			target,
		},
	}
}

// InvocationError is returned when neither traceroute utility could be run
type InvocationError struct {
	Primary  error
	Fallback error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("traceroute failed: %s; fallback failed: %s", e.Primary, e.Fallback)
}

func (e *InvocationError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

type execRunner struct{}

// Run treats a non-zero exit that still printed hops as a success, traceroute
// exits non-zero when the last hops do not answer.
func (execRunner) Run(ctx context.Context, inv Invocation) ([]byte, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(bytes.TrimSpace(out)) > 0 {
			log.Debugf("%s exited with %d, parsing its output anyway", inv.Name, exitErr.ExitCode())
			return out, nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "%s: %s", inv, msg)
		}
		return nil, errors.Wrap(err, inv.String())
	}
	return out, nil
}

// invoke runs the primary invocation and, on any error, exactly one fallback
func invoke(ctx context.Context, runner CommandRunner, target string) ([]byte, error) {
	primary := PrimaryInvocation(target)
	log.Tracef("running %s", primary)
	out, primaryErr := runner.Run(ctx, primary)
	if primaryErr == nil {
		return out, nil
	}
	log.Debugf("primary traceroute failed, trying fallback: %s", primaryErr)

	fallback := FallbackInvocation(target)
	log.Tracef("running %s", fallback)
	out, fallbackErr := runner.Run(ctx, fallback)
	if fallbackErr == nil {
		return out, nil
	}
	return nil, &InvocationError{Primary: primaryErr, Fallback: fallbackErr}
}
