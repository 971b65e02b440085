// Package logging builds the process zerolog.Logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/example/orderbot/internal/config"
)

const filePermission = 0664

// Build collects logger options before Make.
type Build struct {
	writer io.Writer
	path   string
	level  string
	format string
}

// Logger is a configured logger and the file it writes to, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New starts a build writing console output to stderr at info level.
func New() *Build {
	return &Build{writer: os.Stderr, level: "info", format: config.LogFormatConsole}
}

// FromConfig applies the log section of the configuration.
func FromConfig(cfg config.LogConfig) *Build {
	b := New().WithLevel(cfg.Level).WithFormat(cfg.Format)
	if cfg.File != "" {
		b = b.FromPath(cfg.File)
	}
	return b
}

// FromPath appends to a file instead of the writer.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// FromWriter sets the output writer.
func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

func (b *Build) WithLevel(level string) *Build {
	if level != "" {
		b.level = level
	}
	return b
}

func (b *Build) WithFormat(format string) *Build {
	if format != "" {
		b.format = format
	}
	return b
}

// Make opens the output and returns the logger.
func (b *Build) Make() (*Logger, error) {
	level, err := zerolog.ParseLevel(b.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", b.level, err)
	}

	out := &Logger{}
	w := b.writer
	if b.path != "" {
		out.file, err = os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = zerolog.SyncWriter(out.file)
	}

	switch b.format {
	case config.LogFormatJSON:
	case config.LogFormatConsole:
		// Files always get JSON.
		if b.path == "" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
		}
	default:
		out.Close()
		return nil, fmt.Errorf("unknown log format %q", b.format)
	}

	out.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return out, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
