package cmd

import (
	"testing"
	"time"
)

func TestAddRecordsClosedInterval(t *testing.T) {
	setupDataDir(t)
	setClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	addTags, addNote, addFill, addAdjust = []string{"acme"}, "", false, false
	addCmd.Run(addCmd, []string{"09:00", "10:00"})

	tracked := readTracked(t)
	if len(tracked) != 1 {
		t.Fatalf("expected 1 tracked interval, got %d", len(tracked))
	}
	if tracked[0].IsOpen() {
		t.Fatalf("expected a closed interval")
	}
	if durationMinutes(tracked[0]) != 60 {
		t.Fatalf("expected 60 minute duration, got %d", durationMinutes(tracked[0]))
	}
}
