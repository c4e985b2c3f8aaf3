package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/result"
)

const (
	routeWidth    = 75
	metricsWidth  = 71
	waterfallBars = 40
	routeSpan     = 70
)

// TestBanner is printed before the full performance test of host
func TestBanner(w io.Writer, host string) {
	b := newBox(w, routeWidth, doubleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("     SOUTH CITY COMPUTER - Client Performance & Network Diagnostics")
	b.sep()
	b.line("  Target: %s", center(host, 65))
	b.close()
}

// EndpointProgress prints the outcome of one endpoint of the performance test
func EndpointProgress(w io.Writer, m result.EndpointMeasurement) {
	if m.Metrics == nil {
		fmt.Fprintf(w, "  %s %s... FAILED: %s\n", m.Name, m.Path, m.Error)
		return
	}
	fmt.Fprintf(w, "  %s %s... %.2fms ✓\n", m.Name, m.Path, m.Metrics.TotalMs)
}

// Metrics prints the timing waterfall of one measurement
func Metrics(w io.Writer, m *result.PerformanceMetrics) {
	b := newBox(w, metricsWidth, doubleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("  PERFORMANCE METRICS: %s", center(m.URL, 40))
	b.sep()
	b.line("  HTTP Status: %3d", m.StatusCode)
	b.line("  Response Size: %10d bytes", m.ResponseSize)
	if m.ResolvedIP != "" {
		b.line("  Resolved IP: %s", m.ResolvedIP)
	}
	b.sep()
	b.blank()
	b.line("  TIMING BREAKDOWN")
	b.line("  %s", strings.Repeat("─", 57))
	b.line("  DNS Lookup    │%s│ %8.2fms", bar("░", m.DNSLookupMs, m.TotalMs), m.DNSLookupMs)
	b.line("  TCP Connect   │%s│ %8.2fms", bar("▒", m.TCPConnectMs, m.TotalMs), m.TCPConnectMs)
	b.line("  TTFB          │%s│ %8.2fms", bar("▓", m.TTFBMs, m.TotalMs), m.TTFBMs)
	b.line("  Download      │%s│ %8.2fms", bar("█", m.DownloadMs, m.TotalMs), m.DownloadMs)
	b.line("  %s", strings.Repeat("─", 57))
	b.line("  TOTAL         │%s│ %8.2fms", strings.Repeat("█", waterfallBars), m.TotalMs)
	b.blank()
	b.sep()
	rating := MeasurementRating(m.TotalMs)
	b.line("  Rating: %s %s - %s", rating.Stars, rating.Label, rating.Note)
	b.close()
	fmt.Fprintln(w)
}

// bar is proportional to part/total over waterfallBars cells, at least one cell
func bar(cell string, part, total float64) string {
	n := 1
	if total > 0 {
		if cells := int(part / total * waterfallBars); cells > 1 {
			n = min(cells, waterfallBars)
		}
	}
	return strings.Repeat(cell, n)
}

// TestSummary prints the aggregate box of a full performance test
func TestSummary(w io.Writer, test result.PerformanceTest) {
	s := test.Summary()
	b := newBox(w, bannerWidth, doubleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("  SUMMARY")
	b.sep()
	b.line("  Endpoints tested: %5d", s.Tested)
	b.line("  Successful:       %5d", s.Successful)
	b.line("  Total data:       %10d bytes", s.TotalBytes)
	b.line("  Average time:     %10.2f ms", s.AvgTotalMs)
	b.close()
}

// HopMarker is ◉ for the target, ● for a responding hop and ○ otherwise
func HopMarker(hop result.TraceHop) string {
	switch {
	case hop.IsTarget:
		return "◉"
	case hop.Responded():
		return "●"
	default:
		return "○"
	}
}

// HopStatus is the status column of the hop table
func HopStatus(hop result.TraceHop) string {
	switch {
	case hop.IsTarget:
		return "◉ TARGET"
	case !hop.Responded():
		return "○ No response"
	case hop.IsSlow(common.SlowHopThreshold):
		return "● Slow"
	default:
		return "● OK"
	}
}

// RouteLine draws at most common.MaxRouteMarkers markers joined by ─ and an arrow
func RouteLine(hops []result.TraceHop) string {
	markers := min(len(hops), common.MaxRouteMarkers)
	gap := routeSpan/max(markers, 1) - 1

	var sb strings.Builder
	for i := 0; i < markers; i++ {
		sb.WriteString(HopMarker(hops[i]))
		if i < markers-1 && gap > 0 {
			sb.WriteString(strings.Repeat("─", gap))
		}
	}
	sb.WriteString("──→")
	return sb.String()
}

// Route prints the route visualization and the hop table of a trace
func Route(w io.Writer, diag *result.NetworkDiagnostics) {
	b := newBox(w, routeWidth, doubleFrame)
	fmt.Fprintln(w)
	b.open()
	b.line("  NETWORK ROUTE TO: %s", center(diag.Target, 53))
	b.sep()
	if diag.ResolvedIP != "" {
		b.line("  Resolved IP: %s", center(diag.ResolvedIP, 58))
	}
	if diag.PublicIP != "" {
		b.line("  Source IP:   %s", center(diag.PublicIP, 58))
	}
	b.line("  Total Hops: %-3d    Packet Loss: %5.1f%%", diag.TotalHops, diag.PacketLoss)
	b.sep()
	b.blank()
	b.line("  YOUR PC%sTARGET", strings.Repeat(" ", 55))
	b.line("    ┌──┐%s┌──┐", strings.Repeat(" ", 56))
	b.line("    │PC│%s│WW│", strings.Repeat(" ", 56))
	b.line("    └──┘%s└──┘", strings.Repeat(" ", 56))
	b.line("      │%s│", strings.Repeat(" ", 59))
	b.line("      %s", RouteLine(diag.Hops))
	b.blank()
	b.sep()
	b.line("  HOP │ %s │ %s │ %s", pad("IP ADDRESS", 18), pad("RTT (ms)", 17), "STATUS")
	fmt.Fprintln(w, "╠══════╪"+strings.Repeat("═", 20)+"╪"+strings.Repeat("═", 19)+"╪"+strings.Repeat("═", 27)+"╣")
	for _, hop := range diag.Hops {
		b.line("  %s │ %s │ %s │ %s", padLeft(fmt.Sprint(hop.HopNumber), 3), center(hopAddress(hop), 18), center(hopRTT(hop), 17), center(HopStatus(hop), 24))
	}
	b.close()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Legend: ● Responding hop   ○ No response/timeout   ◉ Target reached")
	fmt.Fprintln(w)
}

func hopAddress(hop result.TraceHop) string {
	if !hop.Responded() {
		return "* * *"
	}
	if hop.Hostname != "" && utf8.RuneCountInString(hop.IP)+utf8.RuneCountInString(hop.Hostname) < 16 {
		return hop.Hostname + " " + hop.IP
	}
	return hop.IP
}

func hopRTT(hop result.TraceHop) string {
	avg, ok := hop.AvgRTT()
	if !ok {
		return "timeout"
	}
	return fmt.Sprintf("%.2f", avg)
}
