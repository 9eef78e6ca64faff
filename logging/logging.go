// Package logging builds the zerolog logger used across the splitter from a
// config.Config.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/libsplitter-go/config"
)

// ErrUnsupportedFormat indicates a log format other than plain or json.
var ErrUnsupportedFormat = errors.New("logging: unsupported log format")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to stderr (and to cfg.LogFile when set). The
// returned closer releases the log file.
func New(cfg config.Config) (zerolog.Logger, io.Closer, error) {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter is New with an explicit main writer.
func NewWithWriter(w io.Writer, cfg config.Config) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging: %w", err)
	}

	var main io.Writer
	switch cfg.LogFormat {
	case "", "plain", "text":
		main = consoleWriter(w, false)
	case "json":
		main = w
	default:
		return zerolog.Nop(), nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, cfg.LogFormat)
	}

	var closer io.Closer = nopCloser{}
	out := main
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: open log file: %w", err)
		}
		closer = f
		out = zerolog.MultiLevelWriter(main, consoleWriter(f, true))
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "????"
		},
	}
}
