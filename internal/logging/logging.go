// Package logging builds the slog logger shared by the command-line driver.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// LevelCritical sits above slog.LevelError for CRITICAL and numeric level 50.
const LevelCritical = slog.Level(12)

// DefaultLevel applies when LOG_LEVEL is unset or empty.
const DefaultLevel = slog.LevelWarn

// ParseLevel accepts DEBUG, INFO, WARNING (or WARN), ERROR and CRITICAL in any
// case, or the numeric levels 10, 20, 30, 40 and 50. An empty string yields
// DefaultLevel.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLevel, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n <= 10:
			return slog.LevelDebug, nil
		case n <= 20:
			return slog.LevelInfo, nil
		case n <= 30:
			return slog.LevelWarn, nil
		case n <= 40:
			return slog.LevelError, nil
		default:
			return LevelCritical, nil
		}
	}

	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL", "FATAL":
		return LevelCritical, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// New creates a logger writing to w. format is "text" (default) or "json".
// It does not set the global logger.
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if l, ok := a.Value.Any().(slog.Level); ok && l >= LevelCritical {
					a.Value = slog.StringValue("CRITICAL")
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return slog.New(handler), nil
}
