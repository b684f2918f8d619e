package cmd

import (
	"strconv"
	"testing"
	"time"
)

func TestSplitIDsAndTags(t *testing.T) {
	ids, tags := splitIDsAndTags([]string{"@3", "urgent", "billable"})
	if len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("expected ids [3], got %v", ids)
	}
	if len(tags) != 2 || tags[0] != "urgent" || tags[1] != "billable" {
		t.Fatalf("expected tags [urgent billable], got %v", tags)
	}
}

func TestTagAddsTagToEntry(t *testing.T) {
	setupDataDir(t)
	setClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	addTags, addNote, addFill, addAdjust = []string{"acme"}, "", false, false
	addCmd.Run(addCmd, []string{"09:00", "10:00"})

	before := readTracked(t)
	id := before[0].ID

	tagCmd.Run(tagCmd, []string{"@" + strconv.Itoa(id), "urgent"})

	after := readTracked(t)
	if len(after) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(after))
	}
	if !after[0].HasTag("urgent") || !after[0].HasTag("acme") {
		t.Fatalf("expected both tags present, got %v", after[0].Tags)
	}
}

func TestUntagRemovesTagFromEntry(t *testing.T) {
	setupDataDir(t)
	setClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	addTags, addNote, addFill, addAdjust = []string{"acme", "urgent"}, "", false, false
	addCmd.Run(addCmd, []string{"09:00", "10:00"})

	before := readTracked(t)
	id := before[0].ID

	untagCmd.Run(untagCmd, []string{"@" + strconv.Itoa(id), "urgent"})

	after := readTracked(t)
	if after[0].HasTag("urgent") {
		t.Fatalf("expected urgent tag removed, got %v", after[0].Tags)
	}
	if !after[0].HasTag("acme") {
		t.Fatalf("expected acme tag to remain, got %v", after[0].Tags)
	}
}
