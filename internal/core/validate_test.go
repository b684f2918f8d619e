package core

import (
	"bytes"
	"testing"
)

func seedDB(t *testing.T, db *Database, j *Journal, intervals ...Interval) {
	t.Helper()
	if err := withTxn(t, j, db, func() error {
		for _, iv := range intervals {
			if err := db.AddInterval(iv, false); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seedDB: %v", err)
	}
}

// Scenario 2: overlap rejected without :adjust.
func TestValidateOverlapRejectedWithoutAdjust(t *testing.T) {
	db, j := newTestDB(t)
	i1 := New(mustISO(t, "2023-01-01T09:00:00Z"), mustISO(t, "2023-01-01T10:00:00Z"), []string{"a"}, "")
	seedDB(t, db, j, i1)

	i2 := New(mustISO(t, "2023-01-01T09:30:00Z"), mustISO(t, "2023-01-01T10:30:00Z"), []string{"b"}, "")
	req := Request{Interval: i2, Adjust: false}

	_, _, err := Validate(nil, db, nil, req, nil)
	if err == nil {
		t.Fatalf("expected OverlapError")
	}
	if _, ok := err.(*OverlapError); !ok {
		t.Fatalf("expected *OverlapError, got %T: %v", err, err)
	}

	all, _ := db.GetAllIntervals()
	if len(all) != 1 {
		t.Fatalf("expected db unchanged, got %d intervals", len(all))
	}
}

// Scenario 3: overlap resolved with :adjust (enclosed case).
func TestValidateAdjustEnclosedSplit(t *testing.T) {
	db, j := newTestDB(t)
	i1 := New(mustISO(t, "2023-01-01T09:00:00Z"), mustISO(t, "2023-01-01T12:00:00Z"), []string{"a"}, "")
	seedDB(t, db, j, i1)

	i2 := New(mustISO(t, "2023-01-01T10:00:00Z"), mustISO(t, "2023-01-01T11:00:00Z"), []string{"b"}, "")
	req := Request{Interval: i2, Adjust: true}

	var resolved Interval
	var add bool
	err := withTxn(t, j, db, func() error {
		var verr error
		resolved, add, verr = Validate(nil, db, nil, req, nil)
		return verr
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !add {
		t.Fatalf("expected caller to still insert the new interval")
	}

	if err := withTxn(t, j, db, func() error { return db.AddInterval(resolved, false) }); err != nil {
		t.Fatalf("insert resolved interval: %v", err)
	}

	all, err := db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 intervals after split, got %d: %+v", len(all), all)
	}
	want := []Interval{
		New(mustISO(t, "2023-01-01T09:00:00Z"), mustISO(t, "2023-01-01T10:00:00Z"), []string{"a"}, ""),
		New(mustISO(t, "2023-01-01T10:00:00Z"), mustISO(t, "2023-01-01T11:00:00Z"), []string{"b"}, ""),
		New(mustISO(t, "2023-01-01T11:00:00Z"), mustISO(t, "2023-01-01T12:00:00Z"), []string{"a"}, ""),
	}
	// GetAllIntervals returns chronological (ascending) order, so compare
	// position by position after clearing the IDs.
	sortedAll := append([]Interval{}, all...)
	for idx := len(sortedAll) - 1; idx >= 0; idx-- {
		sortedAll[idx].ID = 0
	}
	for i, w := range want {
		if !sortedAll[i].Equal(w) {
			t.Fatalf("interval %d mismatch: got %+v want %+v", i, sortedAll[i], w)
		}
	}
}

// Scenario 4: open interval encloses, identical tags, no-op.
func TestValidateOpenEnclosesSameTagsNoOp(t *testing.T) {
	db, j := newTestDB(t)
	open := NewOpen(mustISO(t, "2023-01-01T09:00:00Z"), []string{"a"}, "")
	seedDB(t, db, j, open)

	candidate := NewOpen(mustISO(t, "2023-01-01T10:00:00Z"), []string{"a"}, "")
	req := Request{Interval: candidate, Adjust: true}

	_, add, err := Validate(nil, db, nil, req, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if add {
		t.Fatalf("expected no-op (add=false) when tags match")
	}

	all, err := db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals: %v", err)
	}
	if len(all) != 1 || !all[0].Equal(open) {
		t.Fatalf("expected db unchanged, got %+v", all)
	}
}

// Scenario 5: open interval encloses, different tags, flatten-and-close.
func TestValidateOpenEnclosesDifferentTagsCloses(t *testing.T) {
	db, j := newTestDB(t)
	open := NewOpen(mustISO(t, "2023-01-01T09:00:00Z"), []string{"a"}, "")
	seedDB(t, db, j, open)

	candidate := NewOpen(mustISO(t, "2023-01-01T10:00:00Z"), []string{"b"}, "")
	req := Request{Interval: candidate, Adjust: true}

	var resolved Interval
	var add bool
	err := withTxn(t, j, db, func() error {
		var verr error
		resolved, add, verr = Validate(nil, db, nil, req, nil)
		return verr
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !add {
		t.Fatalf("expected caller to still insert new open interval")
	}
	if err := withTxn(t, j, db, func() error { return db.AddInterval(resolved, false) }); err != nil {
		t.Fatalf("insert: %v", err)
	}

	all, err := db.GetAllIntervals()
	if err != nil {
		t.Fatalf("GetAllIntervals: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %+v", len(all), all)
	}
	wantClosed := New(mustISO(t, "2023-01-01T09:00:00Z"), mustISO(t, "2023-01-01T10:00:00Z"), []string{"a"}, "")
	wantOpen := NewOpen(mustISO(t, "2023-01-01T10:00:00Z"), []string{"b"}, "")
	if !all[0].Equal(wantClosed) {
		t.Fatalf("expected first interval to be the closed remainder, got %+v", all[0])
	}
	if !all[1].Equal(wantOpen) || !all[1].IsOpen() {
		t.Fatalf("expected second interval to be the new open one, got %+v", all[1])
	}
}

// Scenario 6: fill forward and backward.
func TestValidateFillForwardAndBackward(t *testing.T) {
	db, j := newTestDB(t)
	i1 := New(mustISO(t, "2023-01-01T08:00:00Z"), mustISO(t, "2023-01-01T09:00:00Z"), []string{"a"}, "")
	i2 := New(mustISO(t, "2023-01-01T11:00:00Z"), mustISO(t, "2023-01-01T12:00:00Z"), []string{"b"}, "")
	seedDB(t, db, j, i1, i2)

	candidate := New(mustISO(t, "2023-01-01T09:30:00Z"), mustISO(t, "2023-01-01T10:30:00Z"), []string{"c"}, "")
	req := Request{Interval: candidate, Fill: true}

	resolved, add, err := Validate(nil, db, nil, req, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !add {
		t.Fatalf("expected caller to insert filled interval")
	}
	if resolved.Start != mustISO(t, "2023-01-01T09:00:00Z") {
		t.Fatalf("expected backfilled start 09:00, got %s", resolved.Start)
	}
	if resolved.End != mustISO(t, "2023-01-01T11:00:00Z") {
		t.Fatalf("expected filled end 11:00, got %s", resolved.End)
	}
}

// P5: fill idempotence.
func TestFillIdempotence(t *testing.T) {
	db, j := newTestDB(t)
	i1 := New(mustISO(t, "2023-01-01T08:00:00Z"), mustISO(t, "2023-01-01T09:00:00Z"), []string{"a"}, "")
	i2 := New(mustISO(t, "2023-01-01T11:00:00Z"), mustISO(t, "2023-01-01T12:00:00Z"), []string{"b"}, "")
	seedDB(t, db, j, i1, i2)

	candidate := New(mustISO(t, "2023-01-01T09:30:00Z"), mustISO(t, "2023-01-01T10:30:00Z"), []string{"c"}, "")
	req := Request{Interval: candidate, Fill: true}

	first, _, err := Validate(nil, db, nil, req, nil)
	if err != nil {
		t.Fatalf("first Validate: %v", err)
	}

	second, _, err := Validate(nil, db, nil, Request{Interval: first, Fill: true}, nil)
	if err != nil {
		t.Fatalf("second Validate: %v", err)
	}
	if !first.Equal(second) {
		t.Fatalf("expected idempotent fill, got %+v != %+v", first, second)
	}
}

func TestValidateVerboseOutput(t *testing.T) {
	db, j := newTestDB(t)
	i1 := New(mustISO(t, "2023-01-01T08:00:00Z"), mustISO(t, "2023-01-01T09:00:00Z"), []string{"a"}, "")
	seedDB(t, db, j, i1)

	candidate := New(mustISO(t, "2023-01-01T09:30:00Z"), mustISO(t, "2023-01-01T10:00:00Z"), []string{"c"}, "")
	req := Request{Interval: candidate, Fill: true}
	rules := MapRuleView{Bools: map[string]bool{"verbose": true}}

	var buf bytes.Buffer
	_, _, err := Validate(rules, db, nil, req, &buf)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected verbose output to be written")
	}
}
