// Package logger builds the service's zerolog logger and holds the process
// default that code without an injected logger falls back to.
//
// Levels, lowest first: trace, debug, info, warn, error.
package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how a logger is built.
type Options struct {
	// Level is the minimum level (LOG_LEVEL). Empty or unknown means info.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every entry as the "service" field.
	Service string
}

var std atomic.Pointer[zerolog.Logger]

// New builds a logger from opts without touching the process default.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

// Init installs the process default and returns it. Only the first call
// installs anything; later calls return the logger already in place.
func Init(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	l := New(opts)
	std.CompareAndSwap(nil, &l)
	return *std.Load()
}

// Get returns the process default, or a JSON info logger on stdout when
// Init has not run.
func Get() zerolog.Logger {
	if l := std.Load(); l != nil {
		return *l
	}
	return New(Options{})
}

// Component returns the default logger tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
