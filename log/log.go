// Package log builds slog handlers from CLI flag values.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatText outputs logs in logfmt-like text.
	FormatText Format = "text"
)

var (
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// Config holds CLI flag values for log configuration.
type Config struct {
	Level  string
	Format string
}

// NewConfig returns a Config with the defaults.
func NewConfig() *Config {
	return &Config{Level: "info", Format: string(FormatText)}
}

// RegisterFlags adds logging flags to the given flag set.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, "log-level", c.Level,
		"log level, one of: error, warn, info, debug")
	flags.StringVar(&c.Format, "log-format", c.Format,
		fmt.Sprintf("log format, one of: %s, %s", FormatText, FormatJSON))
}

// NewHandler creates a slog.Handler from the stored strings.
func (c *Config) NewHandler(w io.Writer) (slog.Handler, error) {
	lvl, err := GetLevel(c.Level)
	if err != nil {
		return nil, err
	}
	f, err := GetFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return CreateHandler(w, lvl, f), nil
}

// CreateHandler creates a slog.Handler with the given level and format.
func CreateHandler(w io.Writer, lvl slog.Level, f Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if f == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// GetLevel parses a log level string.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// GetFormat parses a log format string.
func GetFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "json":
		return FormatJSON, nil
	case "text", "logfmt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}
