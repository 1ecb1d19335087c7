// Package logging builds the zerolog logger shared by all components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Config selects level and format.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// New returns a logger writing to stderr.
func New(cfg Config) (logger zerolog.Logger, err error) {
	logger, err = NewWithWriter(cfg, os.Stderr)
	return logger, err
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) (logger zerolog.Logger, err error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		level, err = zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			err = errors.Wrapf(err, "invalid log level %q", cfg.Level)
			return logger, err
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "", FormatPretty:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case FormatJSON:
	default:
		err = errors.Errorf("invalid log format %q: must be %s or %s", cfg.Format, FormatJSON, FormatPretty)
		return logger, err
	}

	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, err
}
