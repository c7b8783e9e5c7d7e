// Package logging configures cherry's loggers on top of charmbracelet/log.
//
// All log output goes to stderr; stdout carries the JSON/YAML envelopes the
// CLI prints. Component loggers are usually package-level variables created
// before the root command runs, so New registers each one and Setup, SetLevel
// and SetOutput apply to the default logger and every registered logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

var (
	mu      sync.Mutex
	loggers []*log.Logger
)

// Setup configures all loggers. quiet wins over verbose.
func Setup(verbose, quiet, jsonFormat bool) {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	if quiet {
		level = LevelError
	}
	formatter := log.TextFormatter
	if jsonFormat {
		formatter = log.JSONFormatter
	}

	apply(func(l *log.Logger) {
		l.SetLevel(level)
		l.SetOutput(os.Stderr)
		l.SetReportTimestamp(true)
		l.SetFormatter(formatter)
	})
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// SetLevel overrides the level after Setup.
func SetLevel(level log.Level) {
	apply(func(l *log.Logger) { l.SetLevel(level) })
}

// New returns a logger prefixed with component.
func New(component string) *log.Logger {
	l := log.WithPrefix(component)
	mu.Lock()
	loggers = append(loggers, l)
	mu.Unlock()
	return l
}

// SetOutput redirects every logger, mostly for tests.
func SetOutput(w io.Writer) {
	apply(func(l *log.Logger) { l.SetOutput(w) })
}

func apply(fn func(l *log.Logger)) {
	fn(log.Default())
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		fn(l)
	}
}
