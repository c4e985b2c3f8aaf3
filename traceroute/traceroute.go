// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package traceroute runs the platform traceroute utility and parses its hops
package traceroute

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/probe"
	"github.com/southcitycomputer/scc-perf/publicip"
	"github.com/southcitycomputer/scc-perf/result"
	"github.com/southcitycomputer/scc-perf/reversedns"
)

// Tracer discovers the network path to a target
type Tracer interface {
	Trace(ctx context.Context, target string) (*result.NetworkDiagnostics, error)
}

// Options enable the optional enrichments of a trace
type Options struct {
	ReverseDNS bool
	// CollectSourcePublicIP fills NetworkDiagnostics.PublicIP
	CollectSourcePublicIP bool
}

// SubprocessTracer shells out to traceroute, or tracert when that fails
type SubprocessTracer struct {
	runner          CommandRunner
	publicIPFetcher publicip.Fetcher
	options         Options
}

// NewSubprocessTracer returns a tracer running the real utilities
func NewSubprocessTracer(options Options) *SubprocessTracer {
	return &SubprocessTracer{
		runner:          execRunner{},
		publicIPFetcher: publicip.NewPublicIPFetcher(),
		options:         options,
	}
}

// WithOptions returns a copy of the tracer using options
func (t *SubprocessTracer) WithOptions(options Options) *SubprocessTracer {
	clone := *t
	clone.options = options
	return &clone
}

// Trace resolves target, runs the traceroute and parses its output. A failed
// resolution only leaves ResolvedIP empty.
func (t *SubprocessTracer) Trace(ctx context.Context, target string) (*result.NetworkDiagnostics, error) {
	target = strings.TrimSpace(target)
	if target == "" || strings.HasPrefix(target, "-") {
		return nil, &probe.InvalidTargetError{Err: fmt.Errorf("cannot trace %q", target)}
	}

	diag := &result.NetworkDiagnostics{Target: target}

	var wg sync.WaitGroup
	if t.options.CollectSourcePublicIP && t.publicIPFetcher != nil {
		log.Trace("collect public ip")
		wg.Add(1)
		go func() {
			defer wg.Done()
			ip, err := t.publicIPFetcher.GetIP(ctx)
			if err != nil {
				log.Debugf("Error getting IP: %s", err)
				return
			}
			diag.PublicIP = ip.String()
		}()
	}

	resolvedIP, err := resolveTarget(ctx, target)
	if err != nil {
		log.Debugf("could not resolve %s: %s", target, err)
	}
	diag.ResolvedIP = resolvedIP

	out, err := invoke(ctx, t.runner, target)
	if err != nil {
		wg.Wait()
		return nil, err
	}
	diag.Hops = ParseHops(string(out), resolvedIP)

	if t.options.ReverseDNS {
		enrichWithReverseDns(ctx, diag.Hops)
	}
	wg.Wait()

	diag.Normalize()
	return diag, nil
}

func enrichWithReverseDns(ctx context.Context, hops []result.TraceHop) {
	var wg sync.WaitGroup
	for i := range hops {
		if !hops[i].Responded() {
			continue
		}
		wg.Add(1)
		go func(hop *result.TraceHop) {
			defer wg.Done()
			hop.Hostname = reversedns.Hostname(ctx, hop.IP)
		}(&hops[i])
	}
	wg.Wait()
}
