package cmd

import (
	"strconv"
	"testing"
	"time"
)

func TestResizeChangesDurationKeepingStart(t *testing.T) {
	setupDataDir(t)
	setClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	addTags, addNote, addFill, addAdjust = []string{"acme"}, "", false, false
	addCmd.Run(addCmd, []string{"09:00", "10:00"})

	before := readTracked(t)
	if len(before) != 1 {
		t.Fatalf("setup: expected 1 interval, got %d", len(before))
	}
	id := before[0].ID

	resizeDuration = "30m"
	resizeCmd.Run(resizeCmd, []string{"@" + strconv.Itoa(id)})

	after := readTracked(t)
	if len(after) != 1 {
		t.Fatalf("expected 1 interval after resize, got %d", len(after))
	}
	if after[0].Start != before[0].Start {
		t.Fatalf("expected start to stay fixed: before %v after %v", before[0].Start, after[0].Start)
	}
	if durationMinutes(after[0]) != 30 {
		t.Fatalf("expected 30 minute duration, got %d", durationMinutes(after[0]))
	}
}
