// Package logging builds the process logger. Output goes to stderr so command
// output on stdout stays parseable.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/codex-platform/codex-cli/internal/config"
	"github.com/rs/zerolog"
)

func New(cfg config.LogConfig, out io.Writer) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	if cfg.Format == config.LogFormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: true}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
