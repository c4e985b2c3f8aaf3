// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package probe issues hand-framed HTTP/1.x requests over plain TCP and times them
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/southcitycomputer/scc-perf/common"
)

// Response is the outcome of one successful request
type Response struct {
	// Latency runs from the start of the dial to the end of the response
	Latency time.Duration
	// Bytes counts the whole response, status line and headers included
	Bytes      int
	StatusLine string
}

// Executor issues cold GET requests, one fresh connection each
type Executor struct {
	ReadTimeout time.Duration
	Dial        func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewExecutor returns an executor with the default 30s read timeout
func NewExecutor() *Executor {
	d := &net.Dialer{}
	return &Executor{
		ReadTimeout: common.RequestReadTimeout,
		Dial:        d.DialContext,
	}
}

// Execute sends `GET path` to host (host:port) with Connection: close and
// reads the response to EOF. Only a literal `HTTP/1.1 200` or `HTTP/1.0 200`
// status line is a success, any other status is returned as a StageStatus error.
func (e *Executor) Execute(ctx context.Context, host, path string) (Response, error) {
	start := time.Now()

	conn, err := e.Dial(ctx, "tcp", host)
	if err != nil {
		return Response{}, &RequestError{Stage: StageConnect, Err: err}
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(e.ReadTimeout)); err != nil {
		return Response{}, &RequestError{Stage: StageConnect, Err: err}
	}

	if _, err := io.WriteString(conn, buildRequest(host, path, "")); err != nil {
		return Response{}, &RequestError{Stage: StageWrite, Err: err}
	}

	body, err := io.ReadAll(conn)
	if err != nil {
		return Response{}, &RequestError{Stage: StageRead, Err: err}
	}
	latency := time.Since(start)

	statusLine := firstLine(body)
	if !isOK(body) {
		return Response{}, &RequestError{Stage: StageStatus, Err: fmt.Errorf("non-200 response: %q", statusLine)}
	}

	return Response{
		Latency:    latency,
		Bytes:      len(body),
		StatusLine: statusLine,
	}, nil
}

var (
	okHTTP11 = []byte("HTTP/1.1 200")
	okHTTP10 = []byte("HTTP/1.0 200")
)

func isOK(resp []byte) bool {
	return bytes.HasPrefix(resp, okHTTP11) || bytes.HasPrefix(resp, okHTTP10)
}

func firstLine(resp []byte) string {
	if i := bytes.IndexByte(resp, '\n'); i >= 0 {
		resp = resp[:i]
	}
	return string(bytes.TrimRight(resp, "\r"))
}

func buildRequest(host, path, userAgent string) string {
	req := "GET " + path + " HTTP/1.1\r\nHost: " + host + "\r\nConnection: close\r\n"
	if userAgent != "" {
		req += "User-Agent: " + userAgent + "\r\n"
	}
	return req + "\r\n"
}
