package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the handler New builds.
type Format int

const (
	// FormatText is slog's key=value handler, the default for non-terminals.
	FormatText Format = iota

	// FormatJSON is slog's JSON handler, used for log files and aggregators.
	FormatJSON

	// FormatPretty is the colorized charmbracelet/log handler for terminals.
	FormatPretty
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatPretty:
		return "pretty"
	default:
		return "text"
	}
}

// ParseFormat maps a --log-format value to a Format. The empty string is
// text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "pretty":
		return FormatPretty, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q (want text, json or pretty)", s)
	}
}

// Option configures a logger created with New.
type Option func(*config)

// WithDebug lowers the level to Debug when true.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithLevel sets the minimum level directly.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithFormat picks the handler.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithWriter sets the output. Several writers receive every line. Defaults
// to os.Stdout.
func WithWriter(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource includes source file:line in log output.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}

// WithComponent tags every record with component=name, e.g. "api" or
// "autosave".
func WithComponent(name string) Option {
	return func(c *config) {
		c.component = name
	}
}
