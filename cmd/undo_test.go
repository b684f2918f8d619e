package cmd

import (
	"testing"
	"time"
)

func TestUndoRevertsLastTransaction(t *testing.T) {
	setupDataDir(t)
	setClock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	startTags, startNote, startAt, startFill, startClose = []string{"acme"}, "", "", false, false
	startCmd.Run(startCmd, nil)

	if len(readTracked(t)) != 1 {
		t.Fatalf("setup: expected 1 tracked interval before undo")
	}

	undoCmd.Run(undoCmd, nil)

	if len(readTracked(t)) != 0 {
		t.Fatalf("expected undo to remove the started interval")
	}
}
