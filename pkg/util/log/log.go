// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log is a small structured logger in the CockroachDB style: leveled
// severities, V-levels, context tags and redactable arguments.
package log

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/cockroachdb/linkedlist/pkg/util/syncutil"
)

// Severity is the severity level of a log entry.
type Severity int32

// Severities, in increasing order.
const (
	Severity_INFO Severity = iota
	Severity_WARNING
	Severity_ERROR
)

// Char returns the one-letter prefix of a severity, as it appears at the
// start of every log line.
func (s Severity) Char() byte {
	switch s {
	case Severity_WARNING:
		return 'W'
	case Severity_ERROR:
		return 'E'
	default:
		return 'I'
	}
}

// Level specifies a level of verbosity for V logs.
type Level int32

var logging struct {
	verbosity  atomic.Int32
	redactable atomic.Bool

	mu struct {
		syncutil.Mutex
		out io.Writer
	}
}

func init() {
	logging.mu.out = os.Stderr
}

// SetOutput redirects all log output to w and returns a function that
// restores the previous destination.
func SetOutput(w io.Writer) (restore func()) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prev := logging.mu.out
	logging.mu.out = w
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		logging.mu.out = prev
	}
}

// SetVerbosity sets the global V level and returns a function that restores
// the previous one.
func SetVerbosity(level Level) (restore func()) {
	prev := logging.verbosity.Swap(int32(level))
	return func() { logging.verbosity.Store(prev) }
}

// SetRedactable controls whether redaction markers are kept in the output.
func SetRedactable(enabled bool) (restore func()) {
	prev := logging.redactable.Swap(enabled)
	return func() { logging.redactable.Store(prev) }
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level Level) bool {
	return Level(logging.verbosity.Load()) >= level
}

// Infof logs to the INFO severity.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, Severity_INFO, 1, format, args)
}

// Warningf logs to the WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, Severity_WARNING, 1, format, args)
}

// Errorf logs to the ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, Severity_ERROR, 1, format, args)
}

// VEventf logs at INFO severity if the verbosity is at least level.
func VEventf(ctx context.Context, level Level, format string, args ...interface{}) {
	if V(level) {
		addStructured(ctx, Severity_INFO, 1, format, args)
	}
}

func writeEntry(b []byte) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	// Errors writing log output have nowhere to go.
	_, _ = logging.mu.out.Write(b)
}
