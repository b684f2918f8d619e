package cmd

import (
	"testing"
	"time"
)

func TestSwitchClosesCurrentAndOpensNew(t *testing.T) {
	setupDataDir(t)
	clock := setClock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	startTags, startNote, startAt, startFill, startClose = []string{"acme"}, "", "", false, false
	startCmd.Run(startCmd, nil)

	*clock = clock.Add(30 * time.Minute)
	switchTags, switchNote = []string{"beta"}, ""
	switchCmd.Run(switchCmd, nil)

	tracked := readTracked(t)
	if len(tracked) != 2 {
		t.Fatalf("expected 2 tracked intervals, got %d", len(tracked))
	}
	var open, closed bool
	for _, iv := range tracked {
		if iv.IsOpen() {
			open = true
			if len(iv.Tags) != 1 || iv.Tags[0] != "beta" {
				t.Fatalf("expected open entry tagged beta, got %v", iv.Tags)
			}
		} else {
			closed = true
			if len(iv.Tags) != 1 || iv.Tags[0] != "acme" {
				t.Fatalf("expected closed entry tagged acme, got %v", iv.Tags)
			}
		}
	}
	if !open || !closed {
		t.Fatalf("expected one open and one closed entry")
	}
}

func TestSwitchWithoutPriorOpenJustStarts(t *testing.T) {
	setupDataDir(t)
	setClock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	switchTags, switchNote = []string{"solo"}, ""
	switchCmd.Run(switchCmd, nil)

	tracked := readTracked(t)
	if len(tracked) != 1 || !tracked[0].IsOpen() {
		t.Fatalf("expected a single open interval, got %+v", tracked)
	}
}
