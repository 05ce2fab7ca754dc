package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the process logger on stdout.
//   - level: trace, debug, info, warn, error, fatal or panic; anything else is info
//   - format: "pretty" for console output during development, otherwise JSON
func Setup(level, format string) zerolog.Logger {
	return New(os.Stdout, level, format)
}

// New builds a logger writing to w. Every line carries the instance name so
// logs from several servers sharing one Redis can be told apart.
func New(w io.Writer, level, format string) zerolog.Logger {
	if format == "pretty" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	if host, err := os.Hostname(); err == nil {
		ctx = ctx.Str("instance", host)
	}
	return ctx.Logger()
}
