package cmd

import (
	"testing"
	"time"
)

func TestStopClosesRunningEntry(t *testing.T) {
	setupDataDir(t)
	clock := setClock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	startTags, startNote, startAt, startFill, startClose = []string{"work"}, "", "", false, false
	startCmd.Run(startCmd, nil)

	*clock = clock.Add(45 * time.Minute)
	stopAt = ""
	stopCmd.Run(stopCmd, nil)

	tracked := readTracked(t)
	if len(tracked) != 1 {
		t.Fatalf("expected 1 tracked interval, got %d", len(tracked))
	}
	if tracked[0].IsOpen() {
		t.Fatalf("expected interval to be closed")
	}
	if durationMinutes(tracked[0]) != 45 {
		t.Fatalf("expected 45 minute duration, got %d", durationMinutes(tracked[0]))
	}
}
