package globaltime

import (
	"testing"
	"time"
)

func TestMockTime(t *testing.T) {
	frozen := time.Date(2024, 3, 4, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	SetMockTime(frozen)
	defer ResetTime()

	if got := UTC(); !got.Equal(frozen) || got.Location() != time.UTC {
		t.Fatalf("unexpected UTC time: %s", got)
	}
	if got := Since(frozen.Add(-90 * time.Second)); got != 90*time.Second {
		t.Fatalf("unexpected elapsed time: %s", got)
	}

	ResetTime()
	if Since(frozen) < time.Hour {
		t.Fatalf("expected the real clock after reset")
	}
}
