// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Stage is the step of a load generator request that failed
type Stage string

const (
	StageConnect Stage = "connect"
	StageWrite   Stage = "write"
	StageRead    Stage = "read"
	StageStatus  Stage = "status"
)

// RequestError is returned by Executor.Execute
type RequestError struct {
	Stage Stage
	Err   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Phase is a step of a diagnostics measurement
type Phase string

const (
	PhaseDNS     Phase = "dns lookup"
	PhaseConnect Phase = "tcp connect"
	PhaseTTFB    Phase = "time to first byte"
	PhaseReceive Phase = "download"
)

// PhaseError names the phase that aborted a measurement
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// InvalidTargetError represents an unusable URL or host
type InvalidTargetError struct {
	Err error
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target: %s", e.Err)
}

func (e *InvalidTargetError) Unwrap() error {
	return e.Err
}

// ErrorCode is the classification reported by the HTTP API
type ErrorCode string

const (
	// ErrCodeDNS indicates a DNS resolution failure.
	ErrCodeDNS ErrorCode = "DNS"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnRefused indicates the target actively refused the connection.
	ErrCodeConnRefused ErrorCode = "CONNREFUSED"
	// ErrCodeHostUnreach indicates the target host is unreachable.
	ErrCodeHostUnreach ErrorCode = "HOSTUNREACH"
	// ErrCodeNetUnreach indicates the target network is unreachable.
	ErrCodeNetUnreach ErrorCode = "NETUNREACH"
	// ErrCodeDenied indicates a permission error.
	ErrCodeDenied ErrorCode = "DENIED"
	// ErrCodeInvalidRequest indicates bad parameters from the caller.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeUnknown is the catch-all for unclassified errors.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// ClassifiedError pairs an error with its code
type ClassifiedError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON body returned on error from the HTTP API.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ClassifyError inspects an error chain and returns it with the appropriate code.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	classified := func(code ErrorCode) *ClassifiedError {
		return &ClassifiedError{Code: code, Message: err.Error(), Err: err}
	}

	var invalidTargetErr *InvalidTargetError
	if errors.As(err, &invalidTargetErr) {
		return classified(ErrCodeInvalidRequest)
	}

	var phaseErr *PhaseError
	if errors.As(err, &phaseErr) && phaseErr.Phase == PhaseDNS {
		var netDNSErr *net.DNSError
		if errors.As(err, &netDNSErr) && netDNSErr.IsTimeout {
			return classified(ErrCodeTimeout)
		}
		return classified(ErrCodeDNS)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return classified(ErrCodeTimeout)
	}

	var netDNSErr *net.DNSError
	if errors.As(err, &netDNSErr) {
		if netDNSErr.IsTimeout {
			return classified(ErrCodeTimeout)
		}
		return classified(ErrCodeDNS)
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return classifySyscallError(errno, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return classified(ErrCodeTimeout)
	}

	return classified(ErrCodeUnknown)
}

func classifySyscallError(errno syscall.Errno, original error) *ClassifiedError {
	code := ErrCodeUnknown
	switch errno {
	case syscall.ECONNREFUSED:
		code = ErrCodeConnRefused
	case syscall.EHOSTUNREACH:
		code = ErrCodeHostUnreach
	case syscall.ENETUNREACH:
		code = ErrCodeNetUnreach
	case syscall.EACCES, syscall.EPERM:
		code = ErrCodeDenied
	case syscall.ETIMEDOUT:
		code = ErrCodeTimeout
	}
	return &ClassifiedError{Code: code, Message: original.Error(), Err: original}
}
