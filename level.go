package colonnade

import (
	"log/slog"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Custom log levels extending slog.Level
const (
	LevelTrace  slog.Level = -8
	LevelDebug  slog.Level = slog.LevelDebug
	LevelInfo   slog.Level = slog.LevelInfo
	LevelNotice slog.Level = 2
	LevelWarn   slog.Level = slog.LevelWarn
	LevelError  slog.Level = slog.LevelError
	LevelFatal  slog.Level = 12
)

// levelNames maps level strings to slog.Level values
var levelNames = map[string]slog.Level{
	"trace":   LevelTrace,
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"notice":  LevelNotice,
	"warn":    LevelWarn,
	"warning": LevelWarn, // alias for warn
	"error":   LevelError,
	"fatal":   LevelFatal,
}

// reverseLevelNames maps slog.Level values to canonical string names
var reverseLevelNames = map[slog.Level]string{
	LevelTrace:  "TRACE",
	LevelDebug:  "DEBUG",
	LevelInfo:   "INFO",
	LevelNotice: "NOTICE",
	LevelWarn:   "WARN",
	LevelError:  "ERROR",
	LevelFatal:  "FATAL",
}

// ParseLevel converts a level name to its slog.Level value.
// The comparison is case-insensitive and surrounding whitespace is ignored.
func ParseLevel(name string) (slog.Level, errors.E) {
	if name == "" {
		return 0, errors.New("log level cannot be empty")
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	level, exists := levelNames[normalized]
	if !exists {
		return 0, errors.Errorf("invalid log level %q: supported levels are %s",
			name, supportedLevelsString())
	}
	return level, nil
}

// LevelName returns the canonical display name for a level.
// Unknown levels fall back to slog's own notation.
func LevelName(level slog.Level) string {
	if name, exists := reverseLevelNames[level]; exists {
		return name
	}
	return level.String()
}

// ShortLevelName returns the one-character abbreviation for a level,
// e.g. INFO -> I, DEBUG -> D.
func ShortLevelName(level slog.Level) string {
	return LevelName(level)[:1]
}

// maxLevelNameLength is the width reserved for the levelname field when
// full level names are displayed.
func maxLevelNameLength() int {
	max := 0
	for _, name := range reverseLevelNames {
		if len(name) > max {
			max = len(name)
		}
	}
	return max
}

// supportedLevelsString lists one canonical name per level, ordered by
// severity.
func supportedLevelsString() string {
	canonical := make(map[slog.Level]string)
	for name, level := range levelNames {
		if existing, ok := canonical[level]; !ok || name < existing {
			canonical[level] = name
		}
	}
	levels := make([]slog.Level, 0, len(canonical))
	for level := range canonical {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	names := make([]string, len(levels))
	for i, level := range levels {
		names[i] = canonical[level]
	}
	return strings.Join(names, ", ")
}
