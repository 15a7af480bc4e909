// Package severity defines the closed, ordered set of log levels.
package severity

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/daylog/internal/errors"
)

// Level is a log severity. Higher ranks are more severe.
type Level int

// Supported levels. The numeric values are the ranks used for filtering.
const (
	Trace    Level = 30
	Debug    Level = 40
	Info     Level = 50
	Notice   Level = 60
	Warning  Level = 70
	Error    Level = 80
	Critical Level = 90
	Fatal    Level = 100
)

var names = map[Level]string{
	Fatal:    "FATAL",
	Critical: "CRITICAL",
	Error:    "ERROR",
	Warning:  "WARNING",
	Notice:   "NOTICE",
	Info:     "INFO",
	Debug:    "DEBUG",
	Trace:    "TRACE",
}

// All returns every level, most severe first.
func All() []Level {
	return []Level{Fatal, Critical, Error, Warning, Notice, Info, Debug, Trace}
}

// Rank returns the numeric rank of the level.
func (l Level) Rank() int {
	return int(l)
}

// String returns the display name, or "UNKNOWN" for values outside the table.
func (l Level) String() string {
	if name, ok := names[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	_, ok := names[l]
	return ok
}

// Enabled reports whether a record at l passes a threshold.
func (l Level) Enabled(threshold Level) bool {
	return l.Rank() >= threshold.Rank()
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", errors.ErrInvalidLevel, int(l))
	}
	return []byte(strings.ToLower(l.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Parse converts a level name (case-insensitive) to a Level.
// "WARN" is accepted as an alias for WARNING.
func Parse(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARN" {
		return Warning, nil
	}
	for level, n := range names {
		if n == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errors.ErrInvalidLevel, s)
}

// Names returns the lowercase names of all levels, most severe first.
func Names() []string {
	levels := All()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = strings.ToLower(l.String())
	}
	return out
}
