package config

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. JSON output emits one object per line.
func (l LoggingSettings) NewLogger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if l.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
