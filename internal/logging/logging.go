// Package logging provides the leveled logger used by the runners and the
// injectable Logger interface taken by packages that report progress.
package logging

import (
	"io"
	"log"
	"strings"
)

// Logger is the logging surface library packages depend on.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOp discards everything.
type NoOp struct{}

func (NoOp) Debugf(string, ...any) {}
func (NoOp) Infof(string, ...any)  {}
func (NoOp) Warnf(string, ...any)  {}
func (NoOp) Errorf(string, ...any) {}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel is case-insensitive and falls back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Leveled prefixes each line with its level and drops lines below the
// configured threshold.
type Leveled struct {
	level Level
	out   *log.Logger
}

// New logs through the standard logger at the given level.
func New(level string) *Leveled {
	return &Leveled{level: ParseLevel(level), out: log.Default()}
}

// NewWriter logs to w with the standard flags.
func NewWriter(w io.Writer, level string) *Leveled {
	return &Leveled{level: ParseLevel(level), out: log.New(w, "", log.LstdFlags)}
}

// Level reports the active threshold.
func (l *Leveled) Level() Level { return l.level }

func (l *Leveled) logf(level Level, tag, format string, v ...any) {
	if level < l.level {
		return
	}
	l.out.Printf(tag+format, v...)
}

func (l *Leveled) Debugf(format string, v ...any) { l.logf(LevelDebug, "[DEBUG] ", format, v...) }
func (l *Leveled) Infof(format string, v ...any)  { l.logf(LevelInfo, "[INFO] ", format, v...) }
func (l *Leveled) Warnf(format string, v ...any)  { l.logf(LevelWarn, "[WARN] ", format, v...) }
func (l *Leveled) Errorf(format string, v ...any) { l.logf(LevelError, "[ERROR] ", format, v...) }

// Fatalf logs and exits.
func (l *Leveled) Fatalf(format string, v ...any) {
	l.out.Fatalf("[FATAL] "+format, v...)
}

// OrNoOp returns l, or NoOp when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOp{}
	}
	return l
}
