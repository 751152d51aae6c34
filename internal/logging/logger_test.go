package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"horse.fit/staylens/internal/globaltime"
)

func TestNewWithWriter_EmitsJSONOutsideLocal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "production", "info")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info().Int("batches", 3).Msg("translation finished")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "staylens" || line["message"] != "translation finished" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "production", "warn")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug().Msg("batch dispatched")
	if buf.Len() != 0 {
		t.Fatalf("expected debug line to be dropped, got %q", buf.String())
	}
}

func TestNewWithWriter_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := NewWithWriter(&bytes.Buffer{}, "local", "loud"); err == nil {
		t.Fatalf("expected level parse error")
	}
}

func TestNewWithWriter_StampsFromProcessClock(t *testing.T) {
	globaltime.SetMockTime(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "production", "info")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info().Msg("snapshot loaded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["time"] != "2024-03-04T12:00:00Z" {
		t.Fatalf("expected mocked timestamp, got %v", line["time"])
	}
}
