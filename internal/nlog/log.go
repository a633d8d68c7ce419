// Package nlog is a small leveled-logging facade, carried through in the
// same shape as the teacher module's own github.com/saferwall/pe/log
// package (Logger + Helper + Filter), which itself mirrors the
// go-kratos/kratos/v2/log API: a minimal Logger interface, a level
// filter, and a Helper that exposes Debugf/Infof/Warnf/Errorf.
package nlog

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level is a logging severity, ordered low to high.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal leveled-logging sink the core writes through.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes "time LEVEL message" lines to an io.Writer.
type stdLogger struct {
	w io.Writer
}

// NewStdLogger returns a Logger that writes plain lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, msg string) {
	fmt.Fprintf(l.w, "%s %s %s\n", time.Now().UTC().Format(time.RFC3339), level, msg)
}

// NopLogger discards everything; it is the zero-configuration default.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Log(Level, string) {}

// filterLogger drops messages below a minimum level before forwarding.
type filterLogger struct {
	next Logger
	min  Level
}

// NewFilter wraps next so only messages at or above min are forwarded.
func NewFilter(next Logger, min Level) Logger {
	return &filterLogger{next: next, min: min}
}

func (f *filterLogger) Log(level Level, msg string) {
	if level < f.min {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods over a Logger, matching
// the teacher's log.Helper usage (pe.logger.Errorf(...), .Debugf(...)).
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with Debugf/Infof/Warnf/Errorf convenience methods.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

func (h *Helper) Infof(format string, args ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, args...))
}

func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}

// Default is a Helper over a stderr-backed, error-and-above logger,
// matching the teacher's file.go fallback when no Options.Logger is given.
func Default() *Helper {
	return NewHelper(NewFilter(NewStdLogger(os.Stderr), LevelError))
}
