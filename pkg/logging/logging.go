// Package logging builds the zerolog loggers applinker components receive.
//
// There is no process-wide mutable logger: the root logger is constructed
// once at startup and handed down, and each component derives its own child
// logger tagged with a component field.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates the root logger writing console-formatted output to w.
// Verbosity maps to levels: 0 info, 1 debug, 2+ trace.
func New(w io.Writer, verbosity int) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case verbosity == 1:
		level = zerolog.DebugLevel
	case verbosity >= 2:
		level = zerolog.TraceLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}

	logger := zerolog.New(console).Level(level).With().Timestamp().Logger()
	if verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// Component returns a child of logger tagged with the given component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
