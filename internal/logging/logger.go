// ABOUTME: Zerolog setup: log file plus optional console
// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimeFormat is the console timestamp layout
const TimeFormat = "15:04:05"

// Options controls where logs go.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string

	// File receives every log line when set. It is opened for append.
	File string

	// Console also writes human-readable logs to Stderr. Disable it when a
	// terminal UI owns the screen.
	Console bool

	// Stderr overrides the console destination (tests).
	Stderr io.Writer

	// Session is attached to every event as the "session" field.
	Session string
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// Setup installs the global logger described by opts. The returned closer
// releases the log file and must be called at exit.
func Setup(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		closer = f
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: TimeFormat,
			NoColor:    true,
		})
	}

	if opts.Console {
		out := opts.Stderr
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: TimeFormat,
		})
	}

	var output io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		output = writers[0]
	default:
		output = zerolog.MultiLevelWriter(writers...)
	}

	ctx := zerolog.New(output).With().Timestamp()
	if opts.Session != "" {
		ctx = ctx.Str("session", opts.Session)
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = ctx.Logger()
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: TimeFormat,
	})
}
