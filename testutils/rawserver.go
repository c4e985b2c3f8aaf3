// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package testutils contains helpers shared by package tests
package testutils

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// Responder returns the raw bytes written back for a request path
type Responder func(path string) []byte

// RawServer is a TCP server answering one request per connection and
// closing it afterwards, like a Connection: close HTTP/1.1 server.
type RawServer struct {
	listener net.Listener
	respond  Responder

	requests atomic.Int64
	mu       sync.Mutex
	lastReq  string
	wg       sync.WaitGroup
}

// OKResponse builds a minimal 200 response carrying body
func OKResponse(body string) []byte {
	return []byte("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nConnection: close\r\n\r\n" + body)
}

// StatusResponse builds a response with the given status line and no body
func StatusResponse(statusLine string) []byte {
	return []byte(statusLine + "\r\nConnection: close\r\n\r\n")
}

// NewRawServer starts a server on 127.0.0.1 and stops it on test cleanup
func NewRawServer(t testing.TB, respond Responder) *RawServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %s", err)
	}
	s := &RawServer{listener: ln, respond: respond}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// Addr returns host:port of the listener
func (s *RawServer) Addr() string {
	return s.listener.Addr().String()
}

// Port returns the listening port
func (s *RawServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Requests returns the number of requests served so far
func (s *RawServer) Requests() int {
	return int(s.requests.Load())
}

// LastRequest returns the raw head of the most recent request
func (s *RawServer) LastRequest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq
}

// Close stops accepting and waits for in-flight connections
func (s *RawServer) Close() {
	s.listener.Close()
	s.wg.Wait()
}

func (s *RawServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *RawServer) handle(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	var head strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		head.WriteString(line)
		if line == "\r\n" || line == "\n" {
			break
		}
	}

	path := "/"
	if fields := strings.Fields(head.String()); len(fields) >= 2 {
		path = fields[1]
	}

	s.mu.Lock()
	s.lastReq = head.String()
	s.mu.Unlock()
	s.requests.Add(1)

	conn.Write(s.respond(path))
}
