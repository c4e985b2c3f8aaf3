// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/southcitycomputer/scc-perf/common"
	"github.com/southcitycomputer/scc-perf/log"
	"github.com/southcitycomputer/scc-perf/result"
)

// Target is a parsed measurement destination
type Target struct {
	Host string
	Port int
	Path string
}

// HostHeader returns host:port suitable for the Host header, omitting port 80.
// IPv6 literals are bracketed either way.
func (t Target) HostHeader() string {
	if t.Port == common.DefaultHTTPPort {
		if strings.Contains(t.Host, ":") {
			return "[" + t.Host + "]"
		}
		return t.Host
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// URL returns the http URL of the target
func (t Target) URL() string {
	return "http://" + t.HostHeader() + t.Path
}

// ParseTarget accepts `host`, `host/path`, `host:port/path` or a full
// http(s) URL.
func ParseTarget(raw string) (Target, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")

	hostPort, path := s, "/"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		hostPort, path = s[:i], s[i:]
	}
	if hostPort == "" {
		return Target{}, &InvalidTargetError{Err: fmt.Errorf("missing host in %q", raw)}
	}

	host, port := hostPort, common.DefaultHTTPPort
	if h, p, err := net.SplitHostPort(hostPort); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return Target{}, &InvalidTargetError{Err: fmt.Errorf("invalid port %q", p)}
		}
		host, port = h, n
	} else if strings.HasPrefix(hostPort, "[") && strings.HasSuffix(hostPort, "]") {
		host = hostPort[1 : len(hostPort)-1]
	}
	if host == "" {
		return Target{}, &InvalidTargetError{Err: fmt.Errorf("missing host in %q", raw)}
	}

	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return Target{}, &InvalidTargetError{Err: err}
		}
		host = ascii
	}

	return Target{Host: host, Port: port, Path: path}, nil
}

// PhaseTimer measures the DNS, connect, TTFB and download phases of one request
type PhaseTimer struct {
	LookupHost     func(ctx context.Context, host string) ([]string, error)
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string
}

// NewPhaseTimer returns a timer using the system resolver
func NewPhaseTimer() *PhaseTimer {
	return &PhaseTimer{
		LookupHost:     net.DefaultResolver.LookupHost,
		ConnectTimeout: common.ConnectTimeout,
		ReadTimeout:    common.RequestReadTimeout,
		UserAgent:      common.UserAgent,
	}
}

// Measure runs the phases in order and stops at the first failing one
func (p *PhaseTimer) Measure(ctx context.Context, target Target) (*result.PerformanceMetrics, error) {
	metrics := &result.PerformanceMetrics{URL: target.URL()}

	dnsStart := time.Now()
	addrs, err := p.LookupHost(ctx, target.Host)
	if err == nil && len(addrs) == 0 {
		err = errors.New("no addresses found")
	}
	if err != nil {
		return nil, &PhaseError{Phase: PhaseDNS, Err: err}
	}
	metrics.DNSLookupMs = millis(time.Since(dnsStart))
	metrics.ResolvedIP = addrs[0]
	log.Debugf("resolved %s to %s", target.Host, metrics.ResolvedIP)

	connectStart := time.Now()
	dialer := net.Dialer{Timeout: p.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(metrics.ResolvedIP, strconv.Itoa(target.Port)))
	if err != nil {
		return nil, &PhaseError{Phase: PhaseConnect, Err: err}
	}
	defer conn.Close()
	metrics.TCPConnectMs = millis(time.Since(connectStart))

	if err := conn.SetDeadline(time.Now().Add(p.ReadTimeout)); err != nil {
		return nil, &PhaseError{Phase: PhaseTTFB, Err: err}
	}

	sendStart := time.Now()
	if _, err := io.WriteString(conn, buildRequest(target.HostHeader(), target.Path, p.UserAgent)); err != nil {
		return nil, &PhaseError{Phase: PhaseTTFB, Err: err}
	}

	reader := bufio.NewReader(conn)
	first, err := reader.ReadByte()
	if err != nil {
		return nil, &PhaseError{Phase: PhaseTTFB, Err: err}
	}
	ttfb := time.Since(sendStart)
	metrics.TTFBMs = millis(ttfb)

	rest, err := io.ReadAll(reader)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseReceive, Err: err}
	}
	metrics.DownloadMs = millis(time.Since(sendStart) - ttfb)

	body := append([]byte{first}, rest...)
	metrics.ResponseSize = len(body)
	metrics.StatusCode = parseStatusCode(firstLine(body))
	metrics.TotalMs = metrics.DNSLookupMs + metrics.TCPConnectMs + metrics.TLSHandshakeMs + metrics.TTFBMs + metrics.DownloadMs

	return metrics, nil
}

// parseStatusCode returns the second field of the status line, 0 if absent
func parseStatusCode(statusLine string) int {
	fields := strings.Fields(statusLine)
	if len(fields) < 2 {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil || code < 0 || code > 65535 {
		return 0
	}
	return code
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
