// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build e2etest

package e2etests

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/southcitycomputer/scc-perf/testutils"
)

// binary is a command of the module built once and shared by every test
type binary struct {
	name         string
	pkg          string
	once         sync.Once
	path         string
	needsCleanup bool
	buildErr     error
}

var (
	benchmarkBinary = &binary{name: "scc-benchmark", pkg: "./cmd/scc-benchmark"}
	clientBinary    = &binary{name: "scc-perf-client", pkg: "./cmd/scc-perf-client"}
)

// getPath returns the path to the binary, building it if necessary
func (b *binary) getPath(t *testing.T) string {
	b.once.Do(func() {
		projectRoot := filepath.Join("..")

		binaryName := b.name
		if runtime.GOOS == "windows" {
			binaryName += ".exe"
		}

		// check for pre-built binary (i.e. when running in CI)
		preBuiltBinaryPath := filepath.Join(projectRoot, binaryName)
		if _, err := os.Stat(preBuiltBinaryPath); err == nil {
			t.Logf("using pre-built binary: %s", binaryName)
			b.path = preBuiltBinaryPath
			return
		}

		t.Logf("running command: go build -o %s %s", binaryName, b.pkg)
		buildCmd := exec.Command("go", "build", "-o", binaryName, b.pkg)
		buildCmd.Dir = projectRoot
		buildOutput, err := buildCmd.CombinedOutput()
		if err != nil {
			b.buildErr = fmt.Errorf("failed to build %s: %w\nOutput: %s", binaryName, err, buildOutput)
			return
		}
		b.path = preBuiltBinaryPath
		// removed in TestMain, the binary is shared across tests
		b.needsCleanup = true
	})

	if b.buildErr != nil {
		t.Fatal(b.buildErr)
	}
	return b.path
}

func (b *binary) cleanup() {
	if b.needsCleanup && b.path != "" {
		if err := os.Remove(b.path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to remove binary %s: %v\n", b.path, err)
		}
	}
}

// run executes the binary and returns its exit code and output
func (b *binary) run(t *testing.T, args ...string) (exitCode int, stdout, stderr string) {
	t.Helper()
	path := b.getPath(t)
	if testing.Verbose() {
		args = append(args, "--log-level", "debug")
	}
	t.Logf("running command: %s %v", path, args)

	var outBuf, errBuf bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()

	if errBuf.Len() > 0 {
		t.Logf("%s stderr:\n%s", b.name, errBuf.String())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		exitCode = exitErr.ExitCode()
	default:
		t.Fatalf("failed to run %s: %v", b.name, err)
	}
	return exitCode, outBuf.String(), errBuf.String()
}

func TestMain(m *testing.M) {
	exitCode := m.Run()

	benchmarkBinary.cleanup()
	clientBinary.cleanup()

	os.Exit(exitCode)
}

// newSiteServer serves every path with a small HTML page, /missing with a 404
func newSiteServer(t *testing.T) *testutils.RawServer {
	return testutils.NewRawServer(t, func(path string) []byte {
		if path == "/missing" {
			return testutils.StatusResponse("HTTP/1.1 404 Not Found")
		}
		return testutils.OKResponse("<html><body>South City Computer</body></html>")
	})
}

// freeAddr returns a loopback address nothing listens on
func freeAddr(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}
