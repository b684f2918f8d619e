package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDatafileAddCommitLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2023-01.data")

	df, err := NewDatafile(path)
	if err != nil {
		t.Fatalf("NewDatafile: %v", err)
	}

	i1 := New(mustISO(t, "2023-01-05T09:00:00Z"), mustISO(t, "2023-01-05T10:00:00Z"), []string{"work"}, "")
	i2 := New(mustISO(t, "2023-01-01T09:00:00Z"), mustISO(t, "2023-01-01T10:00:00Z"), []string{"early"}, "")

	if ok, err := df.AddInterval(i1); err != nil || !ok {
		t.Fatalf("AddInterval i1: ok=%v err=%v", ok, err)
	}
	if ok, err := df.AddInterval(i2); err != nil || !ok {
		t.Fatalf("AddInterval i2: ok=%v err=%v", ok, err)
	}

	lines, err := df.AllLines()
	if err != nil {
		t.Fatalf("AllLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	// chronological order: i2 (Jan 1) before i1 (Jan 5)
	if lines[0] != i2.Line() || lines[1] != i1.Line() {
		t.Fatalf("expected chronological order, got %v", lines)
	}

	if err := df.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reloaded, err := NewDatafile(path)
	if err != nil {
		t.Fatalf("NewDatafile reload: %v", err)
	}
	lines2, err := reloaded.AllLines()
	if err != nil {
		t.Fatalf("AllLines reload: %v", err)
	}
	if len(lines2) != 2 {
		t.Fatalf("expected 2 lines after reload, got %d", len(lines2))
	}
}

func TestDatafileRejectsOutOfMonth(t *testing.T) {
	dir := t.TempDir()
	df, err := NewDatafile(filepath.Join(dir, "2023-01.data"))
	if err != nil {
		t.Fatalf("NewDatafile: %v", err)
	}
	outOfMonth := New(mustISO(t, "2023-02-01T09:00:00Z"), mustISO(t, "2023-02-01T10:00:00Z"), nil, "")
	ok, err := df.AddInterval(outOfMonth)
	if err != nil {
		t.Fatalf("AddInterval: %v", err)
	}
	if ok {
		t.Fatalf("expected rejection of interval outside file's month")
	}
}

func TestDatafileCommitNoOpWhenClean(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2023-01.data")
	df, err := NewDatafile(path)
	if err != nil {
		t.Fatalf("NewDatafile: %v", err)
	}
	if err := df.Commit(); err != nil {
		t.Fatalf("Commit on clean file: %v", err)
	}
	// File should not have been created, since nothing was ever written.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file on disk after a clean Commit, stat err=%v", err)
	}
	if _, err := df.AllLines(); err != nil {
		t.Fatalf("AllLines: %v", err)
	}
}

func TestDatafileDeleteInterval(t *testing.T) {
	dir := t.TempDir()
	df, err := NewDatafile(filepath.Join(dir, "2023-01.data"))
	if err != nil {
		t.Fatalf("NewDatafile: %v", err)
	}
	i := New(mustISO(t, "2023-01-05T09:00:00Z"), mustISO(t, "2023-01-05T10:00:00Z"), []string{"work"}, "")
	if _, err := df.AddInterval(i); err != nil {
		t.Fatalf("AddInterval: %v", err)
	}
	ok, err := df.DeleteInterval(i)
	if err != nil || !ok {
		t.Fatalf("DeleteInterval: ok=%v err=%v", ok, err)
	}
	lines, _ := df.AllLines()
	if len(lines) != 0 {
		t.Fatalf("expected empty file after delete, got %v", lines)
	}
	ok, err = df.DeleteInterval(i)
	if err != nil {
		t.Fatalf("DeleteInterval second time: %v", err)
	}
	if ok {
		t.Fatalf("expected false deleting an interval that's already gone")
	}
}
