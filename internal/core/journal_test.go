package core

import (
	"path/filepath"
	"testing"
)

// P3: a create transaction followed by an update+delete transaction is
// reversed one transaction per undo: the first undo restores both
// intervals, the second leaves the database empty.
func TestJournalMultiOpTransactionRoundTrip(t *testing.T) {
	db, j := newTestDB(t)

	a := New(mustISO(t, "2023-03-01T09:00:00Z"), mustISO(t, "2023-03-01T10:00:00Z"), []string{"a"}, "")
	b := New(mustISO(t, "2023-03-01T11:00:00Z"), mustISO(t, "2023-03-01T12:00:00Z"), []string{"b"}, "")
	if err := withTxn(t, j, db, func() error {
		if err := db.AddInterval(a, false); err != nil {
			return err
		}
		return db.AddInterval(b, false)
	}); err != nil {
		t.Fatalf("seed txn: %v", err)
	}

	resizedA := New(a.Start, a.Start+1800, a.Tags, a.Annotation)
	if err := withTxn(t, j, db, func() error {
		if err := db.ModifyInterval(a, resizedA, false); err != nil {
			return err
		}
		return db.DeleteInterval(b)
	}); err != nil {
		t.Fatalf("mutate txn: %v", err)
	}

	all, err := db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals: %v", err)
	}
	if len(all) != 1 || !all[0].Equal(resizedA) {
		t.Fatalf("expected only the resized interval, got %+v", all)
	}

	if err := j.Undo(db); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	all, err = db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals after undo: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both intervals restored, got %+v", all)
	}

	if err := j.Undo(db); err != nil {
		t.Fatalf("second Undo: %v", err)
	}
	all, err = db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals after second undo: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected db empty after undoing both transactions, got %+v", all)
	}
}

func TestJournalUndoNothingToUndo(t *testing.T) {
	db, j := newTestDB(t)
	if err := j.Undo(db); err == nil {
		t.Fatalf("expected an error undoing an empty journal")
	}
}

// Repair resolves a dangling (crash-interrupted) transaction by replaying
// it in reverse, the same way Undo would, and drops it from the file.
func TestJournalRepairResolvesDanglingTransaction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "undo.data")
	j := NewJournal(path)
	db := NewDatabase(filepath.Join(dir, "data"), j)

	i := New(mustISO(t, "2023-04-01T09:00:00Z"), mustISO(t, "2023-04-01T10:00:00Z"), []string{"work"}, "")
	if err := withTxn(t, j, db, func() error { return db.AddInterval(i, false) }); err != nil {
		t.Fatalf("seed txn: %v", err)
	}

	dangling := New(mustISO(t, "2023-04-01T11:00:00Z"), mustISO(t, "2023-04-01T12:00:00Z"), []string{"lunch"}, "")
	if err := j.StartTransaction(); err != nil {
		t.Fatalf("StartTransaction: %v", err)
	}
	if err := db.AddInterval(dangling, false); err != nil {
		t.Fatalf("stage dangling interval: %v", err)
	}
	if err := db.Commit(); err != nil {
		t.Fatalf("commit staged datafiles: %v", err)
	}
	appendRaw(t, path, "txn-begin 2023-04-01T12:00:00Z\nundo create "+dangling.Line()+"\n")

	if err := j.CheckOpenTransaction(); err == nil {
		t.Fatalf("expected an unclosed transaction to be detected")
	}

	if err := j.Repair(db); err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if err := db.Commit(); err != nil {
		t.Fatalf("commit after repair: %v", err)
	}

	if err := j.CheckOpenTransaction(); err != nil {
		t.Fatalf("expected journal to be clean after repair, got %v", err)
	}

	all, err := db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals: %v", err)
	}
	if len(all) != 1 || !all[0].Equal(i) {
		t.Fatalf("expected only the originally-committed interval to remain, got %+v", all)
	}

	if err := j.Undo(db); err != nil {
		t.Fatalf("Undo after repair: %v", err)
	}
	all, err = db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected db empty after undoing the original transaction, got %+v", all)
	}
}
