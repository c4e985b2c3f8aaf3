// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package traceroute

import (
	"bufio"
	"math"
	"net/netip"
	"strconv"
	"strings"

	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/result"
)

const lostProbe = "*"

// rttUnits maps a unit suffix to its value in milliseconds, longest suffix first
var rttUnits = []struct {
	suffix string
	ms     float64
}{
	{"ms", 1},
	{"us", 1e-3},
	{"μs", 1e-3},
	{"µs", 1e-3},
	{"s", 1e3},
}

// ParseHops parses the text output of traceroute or tracert. The first line
// is a header. Hops are numbered from 1 in the order they are kept, at most
// common.DefaultMaxHops of them.
func ParseHops(output string, resolvedIP string) []result.TraceHop {
	hops := []result.TraceHop{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		hop, ok := ParseHopLine(scanner.Text(), resolvedIP)
		if !ok {
			continue
		}
		hop.HopNumber = len(hops) + 1
		hops = append(hops, hop)
		if len(hops) == common.DefaultMaxHops {
			break
		}
	}
	return hops
}

// ParseHopLine parses one hop line. The line must start with its hop index,
// which is not an RTT sample. The first address found is the hop address.
// ok is false when the line holds neither an address, a sample nor a lost
// probe marker. HopNumber is left to the caller.
func ParseHopLine(line string, resolvedIP string) (hop result.TraceHop, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return hop, false
	}
	if n, err := strconv.Atoi(fields[0]); err != nil || n <= 0 {
		return hop, false
	}

	hop.RTTs = []float64{}
	lost := false
	for _, field := range fields[1:] {
		if field == lostProbe {
			lost = true
			continue
		}
		if addr, ok := parseAddr(field); ok {
			if hop.IP == "" {
				hop.IP = addr.String()
				hop.IsTarget = resolvedIP != "" && hop.IP == resolvedIP
			}
			continue
		}
		if rtt, ok := parseRTT(field); ok {
			hop.RTTs = append(hop.RTTs, rtt)
		}
	}

	if hop.IP == "" && len(hop.RTTs) == 0 && !lost {
		return hop, false
	}
	return hop, true
}

func parseAddr(field string) (netip.Addr, bool) {
	field = strings.TrimSuffix(strings.TrimPrefix(field, "("), ")")
	field = strings.TrimSuffix(strings.TrimPrefix(field, "["), "]")
	addr, err := netip.ParseAddr(field)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// parseRTT accepts `1.23`, `1.23ms`, `<1`, `850us` and the like
func parseRTT(field string) (float64, bool) {
	field = strings.TrimPrefix(field, "<")
	scale := 1.0
	for _, unit := range rttUnits {
		if strings.HasSuffix(field, unit.suffix) {
			field = strings.TrimSuffix(field, unit.suffix)
			scale = unit.ms
			break
		}
	}
	if field == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v * scale, true
}
