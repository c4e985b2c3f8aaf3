// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package log

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel orders log verbosity, higher is more verbose
type LogLevel int

const (
	LevelError LogLevel = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = map[string]LogLevel{
	"error": LevelError,
	"warn":  LevelWarn,
	"info":  LevelInfo,
	"debug": LevelDebug,
	"trace": LevelTrace,
}

func (l LogLevel) String() string {
	for name, lvl := range levelNames {
		if lvl == l {
			return name
		}
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLogLevel accepts the lowercase level names used by the --log-level flag
func ParseLogLevel(s string) (LogLevel, error) {
	lvl, ok := levelNames[s]
	if !ok {
		return 0, fmt.Errorf("invalid log level %q (want error, warn, info, debug or trace)", s)
	}
	return lvl, nil
}

var level atomic.Int32

func init() {
	level.Store(int32(LevelWarn))
}

// SetLogLevel sets the most verbose level emitted by the default logger
func SetLogLevel(l LogLevel) {
	level.Store(int32(l))
}

// GetLogLevel returns the current level
func GetLogLevel() LogLevel {
	return LogLevel(level.Load())
}

// SetVerbose is a shortcut for the -v flag: debug when true, warn otherwise
func SetVerbose(v bool) {
	if v {
		SetLogLevel(LevelDebug)
		return
	}
	SetLogLevel(LevelWarn)
}

func enabled(l LogLevel) bool {
	return l <= GetLogLevel()
}

type Logger struct {
	Tracef    func(format string, args ...interface{})
	Trace     func(format string)
	Infof     func(format string, args ...interface{})
	Debugf    func(format string, args ...interface{})
	Warnf     func(format string, args ...interface{}) error
	Errorf    func(format string, args ...interface{}) error
	TraceFunc func(func() string)
}

var zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

var logger = Logger{
	Tracef:    defaultTracef,
	Trace:     defaultTrace,
	Infof:     defaultInfof,
	Debugf:    defaultDebugf,
	Warnf:     defaultWarnf,
	Errorf:    defaultErrorf,
	TraceFunc: defaultTraceFunc,
}

// SetLogger replaces the logging hooks, e.g. to route messages to a host application
func SetLogger(l Logger) {
	logger = l
}

// SetOutput redirects the default zerolog backend
func SetOutput(out zerolog.ConsoleWriter) {
	zl = zerolog.New(out).With().Timestamp().Logger()
}

func Tracef(format string, args ...interface{}) {
	if logger.Tracef != nil {
		logger.Tracef(format, args...)
	}
}

func Trace(format string) {
	if logger.Trace != nil {
		logger.Trace(format)
	}
}

func Infof(format string, args ...interface{}) {
	if logger.Infof != nil {
		logger.Infof(format, args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if logger.Debugf != nil {
		logger.Debugf(format, args...)
	}
}

func Warnf(format string, args ...interface{}) error {
	if logger.Warnf != nil {
		return logger.Warnf(format, args...)
	}
	return nil
}

func Errorf(format string, args ...interface{}) error {
	if logger.Errorf != nil {
		return logger.Errorf(format, args...)
	}
	return nil
}

func TraceFunc(logFunc func() string) {
	if logger.TraceFunc != nil {
		logger.TraceFunc(logFunc)
	}
}

var (
	defaultTracef = func(format string, args ...interface{}) {
		if enabled(LevelTrace) {
			zl.Trace().Msgf(format, args...)
		}
	}

	defaultTrace = func(format string) {
		if enabled(LevelTrace) {
			zl.Trace().Msg(format)
		}
	}

	defaultInfof = func(format string, args ...interface{}) {
		if enabled(LevelInfo) {
			zl.Info().Msgf(format, args...)
		}
	}

	defaultDebugf = func(format string, args ...interface{}) {
		if enabled(LevelDebug) {
			zl.Debug().Msgf(format, args...)
		}
	}

	defaultErrorf = func(format string, args ...interface{}) error {
		err := fmt.Errorf(format, args...)
		if enabled(LevelError) {
			zl.Error().Msg(err.Error())
		}
		return err
	}

	defaultWarnf = func(format string, args ...interface{}) error {
		err := fmt.Errorf(format, args...)
		if enabled(LevelWarn) {
			zl.Warn().Msg(err.Error())
		}
		return err
	}

	defaultTraceFunc = func(logFunc func() string) {
		if enabled(LevelTrace) {
			zl.Trace().Msg(logFunc())
		}
	}
)
