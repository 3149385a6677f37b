package logging

import (
	"log/slog"
	"strings"
)

// DefaultLevel is the log level used when log_level is unset or unrecognized.
const DefaultLevel = slog.LevelInfo

// LevelNames lists the accepted log_level values, most verbose first.
var LevelNames = []string{"debug", "info", "warn", "error"}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a configured log_level to a slog level, ignoring case and surrounding
// space. "warning" is accepted as an alias of "warn". It returns (DefaultLevel, false)
// for anything else, including the empty string.
func ParseLevel(s string) (slog.Level, bool) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return DefaultLevel, false
	}
	return level, true
}
