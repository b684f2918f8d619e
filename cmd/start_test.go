package cmd

import (
	"testing"
	"time"
)

func TestStartCreatesOpenInterval(t *testing.T) {
	setupDataDir(t)
	setClock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	startTags, startNote, startAt, startFill, startClose = []string{"acme"}, "", "", false, false
	startCmd.Run(startCmd, nil)

	tracked := readTracked(t)
	if len(tracked) != 1 {
		t.Fatalf("expected 1 tracked interval, got %d", len(tracked))
	}
	if !tracked[0].IsOpen() {
		t.Fatalf("expected an open interval")
	}
	if len(tracked[0].Tags) != 1 || tracked[0].Tags[0] != "acme" {
		t.Fatalf("expected tags [acme], got %v", tracked[0].Tags)
	}
}

func TestStartAdjustClosesPreviousOpen(t *testing.T) {
	setupDataDir(t)
	clock := setClock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	startTags, startNote, startAt, startFill, startClose = []string{"acme"}, "", "", false, false
	startCmd.Run(startCmd, nil)

	*clock = clock.Add(time.Hour)
	startTags, startNote, startAt, startFill, startClose = []string{"beta"}, "", "", false, true
	startCmd.Run(startCmd, nil)

	tracked := readTracked(t)
	if len(tracked) != 2 {
		t.Fatalf("expected 2 tracked intervals, got %d", len(tracked))
	}
	var closedCount, openCount int
	for _, iv := range tracked {
		if iv.IsOpen() {
			openCount++
		} else {
			closedCount++
		}
	}
	if openCount != 1 || closedCount != 1 {
		t.Fatalf("expected one open and one closed interval, got open=%d closed=%d", openCount, closedCount)
	}
}
