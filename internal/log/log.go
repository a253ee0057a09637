package log

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const DefaultLevel = "warn"

// New returns a console logger writing to w. Logs always go to stderr so
// stdout stays reserved for command output.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
	}
	return zerolog.New(out).Level(lvl), nil
}

// ParseLevel accepts zerolog level names; empty means DefaultLevel.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	return zerolog.ParseLevel(level)
}
