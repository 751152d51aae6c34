package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/staylens/internal/globaltime"
)

// New builds the process logger on stderr, leaving stdout to command output.
func New(environment, level string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, environment, level)
}

// NewWithWriter builds a logger on w. Local environments get the human-readable
// console format, everything else emits JSON lines.
func NewWithWriter(w io.Writer, environment, level string) (zerolog.Logger, error) {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse LOG_LEVEL=%q: %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}

	writer := w
	if strings.EqualFold(strings.TrimSpace(environment), "local") {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(writer).
		Level(parsedLevel).
		Hook(clockHook{}).
		With().
		Str("service", "staylens").
		Logger()

	return logger, nil
}

// clockHook stamps events from globaltime so frozen test clocks reach the logs.
type clockHook struct{}

func (clockHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Time(zerolog.TimestampFieldName, globaltime.UTC())
}
