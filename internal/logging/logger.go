// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the process log output.
type Config struct {
	// Level is trace, debug, info, warn, error, fatal, panic or disabled.
	Level string

	// Format is json, the production default, or console for development.
	Format string

	// Caller adds file:line to each entry.
	Caller bool

	// Timestamp adds an RFC 3339 time field.
	Timestamp bool

	// Output defaults to stderr.
	Output io.Writer
}

// DefaultConfig is JSON at info level with timestamps, on stderr.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// global is swapped whole by Init, so readers never see a half-built logger.
var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log before main calls Init
func init() {
	Init(DefaultConfig())
}

// Init replaces the global logger. It may be called again at any time,
// for example after configuration has been loaded.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	var out io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	global.Store(&logger)
}

// parseLevel maps a level name to a zerolog level. Unknown and empty names
// mean info.
func parseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger returns a copy of the global logger. recommend.Engine and the
// retrain service take theirs from here.
func Logger() zerolog.Logger { return *global.Load() }

// With starts a child logger of the global one.
//
//	engineLogger := logging.With().Str("component", "engine").Logger()
func With() zerolog.Context { return global.Load().With() }

func Trace() *zerolog.Event { return global.Load().Trace() }
func Debug() *zerolog.Event { return global.Load().Debug() }
func Info() *zerolog.Event  { return global.Load().Info() }
func Warn() *zerolog.Event  { return global.Load().Warn() }
func Error() *zerolog.Event { return global.Load().Error() }

// Fatal logs and then exits the process with status 1.
func Fatal() *zerolog.Event { return global.Load().Fatal() }

// Err starts an error entry for err, or an info entry when err is nil.
func Err(err error) *zerolog.Event { return global.Load().Err(err) }

// GetLevel returns the process-wide minimum level.
func GetLevel() zerolog.Level { return zerolog.GlobalLevel() }

// SetLevelString changes the process-wide minimum level by name.
func SetLevelString(level string) { zerolog.SetGlobalLevel(parseLevel(level)) }

// NewTestLogger returns a JSON logger on w for asserting log output.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
