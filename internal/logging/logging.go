// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, format and an optional rotating log file.
type Options struct {
	Level  string
	Format string // "console" or "json"
	File   string
}

// New builds a logger writing to stderr and, when File is set, to a rotating
// file. The file always receives JSON.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log level %q: %w", opts.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var console io.Writer
	switch strings.ToLower(opts.Format) {
	case "", "console":
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	case "json":
		console = os.Stderr
	default:
		return zerolog.Nop(), nil, fmt.Errorf("log format %q: want console or json", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	out := console
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		closer = file
		out = zerolog.MultiLevelWriter(console, file)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer, nil
}

// Setup installs the logger from New as the global logger.
func Setup(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return nil, err
	}
	zerolog.DurationFieldUnit = time.Millisecond
	log.Logger = logger
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
