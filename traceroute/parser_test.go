package traceroute

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southcitycomputer/scc-perf/result"
)

const linuxOutput = `traceroute to southcitycomputer.com (203.0.113.10), 30 hops max, 60 byte packets
 1  10.0.0.1  1.203 ms  1.511 ms  1.102 ms
 2  * * *
 3  100.64.0.1  8.420 ms  9.011 ms  8.733 ms
 4  203.0.113.10  12.5 ms  12.9 ms  13.1 ms
`

const windowsOutput = `
Tracing route to southcitycomputer.com [203.0.113.10]
over a maximum of 30 hops:

  1    <1 ms    <1 ms    <1 ms  192.168.1.1
  2     *        *        *     Request timed out.
  3    15 ms    14 ms    16 ms  203.0.113.10

Trace complete.
`

func TestParseHops_Linux(t *testing.T) {
	hops := ParseHops(linuxOutput, "203.0.113.10")

	require.Len(t, hops, 4)
	assert.Equal(t, result.TraceHop{HopNumber: 1, IP: "10.0.0.1", RTTs: []float64{1.203, 1.511, 1.102}}, hops[0])
	assert.Equal(t, result.TraceHop{HopNumber: 2, RTTs: []float64{}}, hops[1])
	assert.Equal(t, "100.64.0.1", hops[2].IP)
	assert.False(t, hops[2].IsTarget)
	assert.Equal(t, result.TraceHop{HopNumber: 4, IP: "203.0.113.10", RTTs: []float64{12.5, 12.9, 13.1}, IsTarget: true}, hops[3])
}

func TestParseHops_Windows(t *testing.T) {
	hops := ParseHops(windowsOutput, "203.0.113.10")

	require.Len(t, hops, 3)
	assert.Equal(t, result.TraceHop{HopNumber: 1, IP: "192.168.1.1", RTTs: []float64{1, 1, 1}}, hops[0])
	assert.False(t, hops[1].Responded())
	assert.Equal(t, 2, hops[1].HopNumber)
	assert.Equal(t, result.TraceHop{HopNumber: 3, IP: "203.0.113.10", RTTs: []float64{15, 14, 16}, IsTarget: true}, hops[2])
}

func TestParseHops_HeaderOnly(t *testing.T) {
	assert.Empty(t, ParseHops("traceroute to x (1.2.3.4), 30 hops max\n", ""))
	assert.Empty(t, ParseHops("", ""))
}

func TestParseHops_CappedAt30(t *testing.T) {
	var b strings.Builder
	b.WriteString("traceroute to far.example (198.51.100.1), 64 hops max\n")
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&b, "%2d  10.0.%d.1  %d.0 ms\n", i, i, i)
	}

	hops := ParseHops(b.String(), "")
	require.Len(t, hops, 30)
	for i, hop := range hops {
		assert.Equal(t, i+1, hop.HopNumber)
	}
	assert.Equal(t, "10.0.30.1", hops[29].IP)
}

func TestParseHops_SequentialNumbering(t *testing.T) {
	output := "header\n 1  10.0.0.1  1 ms\n garbage line\n 3  10.0.0.3  3 ms\n"
	hops := ParseHops(output, "")
	require.Len(t, hops, 2)
	assert.Equal(t, 1, hops[0].HopNumber)
	assert.Equal(t, 2, hops[1].HopNumber)
	assert.Equal(t, "10.0.0.3", hops[1].IP)
}

func TestParseHopLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		resolvedIP string
		expected   result.TraceHop
		expectedOK bool
	}{
		{
			name:       "hop index is not a sample",
			line:       "1 10.0.0.1 1.2 ms 1.5 ms 1.1 ms",
			expected:   result.TraceHop{IP: "10.0.0.1", RTTs: []float64{1.2, 1.5, 1.1}},
			expectedOK: true,
		},
		{
			name:       "attached unit suffixes",
			line:       " 5  10.0.0.5  1.5ms  850us  0.002s",
			expected:   result.TraceHop{IP: "10.0.0.5", RTTs: []float64{1.5, 0.85, 2}},
			expectedOK: true,
		},
		{
			name:       "micro sign suffixes",
			line:       " 5  10.0.0.5  500μs  250µs",
			expected:   result.TraceHop{IP: "10.0.0.5", RTTs: []float64{0.5, 0.25}},
			expectedOK: true,
		},
		{
			name:       "hostname with parenthesized address",
			line:       " 2  gw.lan (192.168.0.1)  0.512 ms  0.480 ms  0.501 ms",
			expected:   result.TraceHop{IP: "192.168.0.1", RTTs: []float64{0.512, 0.48, 0.501}},
			expectedOK: true,
		},
		{
			name:       "partially lost probes",
			line:       " 7  * 10.0.0.7  9.1 ms *",
			expected:   result.TraceHop{IP: "10.0.0.7", RTTs: []float64{9.1}},
			expectedOK: true,
		},
		{
			name:       "first address wins",
			line:       " 8  10.0.0.8  1 ms 10.0.0.9  2 ms",
			resolvedIP: "10.0.0.9",
			expected:   result.TraceHop{IP: "10.0.0.8", RTTs: []float64{1, 2}},
			expectedOK: true,
		},
		{
			name:       "ipv6 hop",
			line:       " 3  2001:db8::1  4.2 ms",
			resolvedIP: "2001:db8::1",
			expected:   result.TraceHop{IP: "2001:db8::1", RTTs: []float64{4.2}, IsTarget: true},
			expectedOK: true,
		},
		{
			name:       "all probes lost",
			line:       " 9  * * *",
			expected:   result.TraceHop{RTTs: []float64{}},
			expectedOK: true,
		},
		{
			name:       "annotations are ignored",
			line:       " 4  10.0.0.4  3.0 ms !H  3.1 ms !H",
			expected:   result.TraceHop{IP: "10.0.0.4", RTTs: []float64{3.0, 3.1}},
			expectedOK: true,
		},
		{name: "no hop index", line: "Trace complete."},
		{name: "blank", line: "   "},
		{name: "index only", line: " 6 "},
		{name: "index and noise", line: " 6  Request failed."},
		{name: "zero index", line: "0 10.0.0.1 1 ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hop, ok := ParseHopLine(tt.line, tt.resolvedIP)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, tt.expected, hop)
			}
		})
	}
}

func TestParseRTT(t *testing.T) {
	tests := []struct {
		field    string
		expected float64
		ok       bool
	}{
		{"1.234", 1.234, true},
		{"<1", 1, true},
		{"12ms", 12, true},
		{"1s", 1000, true},
		{"ms", 0, false},
		{"abc", 0, false},
		{"-1", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			rtt, ok := parseRTT(tt.field)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, rtt, 1e-9)
		})
	}
}
