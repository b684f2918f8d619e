package core

import (
	"os"
	"path/filepath"
	"sort"
)

// Database owns an ordered sequence of per-month Datafiles and enforces the
// database-wide invariants: at most one open interval, exists as the
// latest-by-start interval; no two closed intervals overlap outside of a
// mutation in progress.
type Database struct {
	dataDir string
	files   map[string]*Datafile // key: "YYYY-MM"
	journal *Journal
}

// NewDatabase opens (without yet loading) the database rooted at dataDir.
// If journal is non-nil, every mutation records an undo op into its open
// transaction; a mutation made while no transaction is open fails with the
// journal's error.
func NewDatabase(dataDir string, journal *Journal) *Database {
	return &Database{dataDir: dataDir, files: map[string]*Datafile{}, journal: journal}
}

func monthKey(i Instant) string { return i.Time().Format("2006-01") }

// fileFor returns (creating if necessary) the Datafile that owns i's month.
func (db *Database) fileFor(i Instant) (*Datafile, error) {
	key := monthKey(i)
	if f, ok := db.files[key]; ok {
		return f, nil
	}
	path := pathForMonth(db.dataDir, i)
	f, err := NewDatafile(path)
	if err != nil {
		return nil, err
	}
	db.files[key] = f
	return f, nil
}

// sortedKeys returns the known month keys in ascending order. It also scans
// the data directory so months already on disk but not yet touched this
// session are discovered.
func (db *Database) sortedKeys() ([]string, error) {
	entries, err := os.ReadDir(db.dataDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, &IOError{Path: db.dataDir, Op: "readdir", Err: err}
	}
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) != ".data" {
			continue
		}
		key := name[:len(name)-len(".data")]
		if _, ok := db.files[key]; !ok {
			f, err := NewDatafile(filepath.Join(db.dataDir, name))
			if err != nil {
				continue // not a month file (e.g. undo.data, backend.flag); skip
			}
			db.files[key] = f
		}
	}
	keys := make([]string, 0, len(db.files))
	for k := range db.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// recordOp records op in the currently open journal transaction, if any.
func (db *Database) recordOp(op Op) error {
	if db.journal == nil {
		return nil
	}
	return db.journal.RecordOp(op)
}

// hasOpenInterval reports whether any interval in the database is open,
// and if so which one.
func (db *Database) hasOpenInterval() (Interval, bool, error) {
	latest, ok, err := db.latestRaw()
	if err != nil || !ok {
		return Interval{}, false, err
	}
	return latest, latest.IsOpen(), nil
}

// latestRaw returns the chronologically last interval in the whole
// database (open, if any; otherwise the closed interval with the greatest
// start), without assigning an ID.
func (db *Database) latestRaw() (Interval, bool, error) {
	keys, err := db.sortedKeys()
	if err != nil {
		return Interval{}, false, err
	}
	for k := len(keys) - 1; k >= 0; k-- {
		f := db.files[keys[k]]
		line, err := f.LastLine()
		if err != nil {
			return Interval{}, false, err
		}
		if line == "" {
			continue
		}
		iv, err := ParseLine(line)
		if err != nil {
			return Interval{}, false, &ParseError{Path: f.Name(), Err: err}
		}
		return iv, true, nil
	}
	return Interval{}, false, nil
}

// AddInterval routes i to the Datafile for its month (creating it if
// absent), enforces the open-uniqueness invariant, and records a journal
// create op. verbose requests are left to the caller (the core performs no
// I/O-bound logging itself).
func (db *Database) AddInterval(i Interval, verbose bool) error {
	if i.IsOpen() {
		_, open, err := db.hasOpenInterval()
		if err != nil {
			return err
		}
		if open {
			return &InvariantViolation{Reason: "an open interval already exists"}
		}
	}
	if err := db.addIntervalRaw(i); err != nil {
		return err
	}
	return db.recordOp(Op{Kind: OpCreate, After: i})
}

// addIntervalRaw performs the Datafile mutation without invariant checks or
// journal recording; used internally by undo/repair replay.
func (db *Database) addIntervalRaw(i Interval) error {
	f, err := db.fileFor(i.Start)
	if err != nil {
		return err
	}
	ok, err := f.AddInterval(i)
	if err != nil {
		return err
	}
	if !ok {
		return &InvariantViolation{Reason: "interval start does not fall within its routed month"}
	}
	return nil
}

// DeleteInterval removes i and records a journal delete op.
func (db *Database) DeleteInterval(i Interval) error {
	if err := db.deleteIntervalRaw(i); err != nil {
		return err
	}
	return db.recordOp(Op{Kind: OpDelete, Before: i})
}

func (db *Database) deleteIntervalRaw(i Interval) error {
	f, err := db.fileFor(i.Start)
	if err != nil {
		return err
	}
	ok, err := f.DeleteInterval(i)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFound{}
	}
	return nil
}

// ModifyInterval replaces before with after. If both fall in the same
// month, this is a single-file rewrite; otherwise it deletes from the old
// month's file and adds to the new one. Either way, a single journal update
// op is recorded.
func (db *Database) ModifyInterval(before, after Interval, verbose bool) error {
	if after.IsOpen() {
		latest, open, err := db.hasOpenInterval()
		if err != nil {
			return err
		}
		if open && !latest.Equal(before) {
			return &InvariantViolation{Reason: "an open interval already exists"}
		}
	}
	if err := db.deleteIntervalRaw(before); err != nil {
		return err
	}
	if err := db.addIntervalRaw(after); err != nil {
		return err
	}
	return db.recordOp(Op{Kind: OpUpdate, Before: before, After: after})
}

// GetAllIntervals concatenates every Datafile in chronological order,
// parses each line, and assigns IDs newest-first (§3 "ID assignment").
func (db *Database) GetAllIntervals() ([]Interval, error) {
	keys, err := db.sortedKeys()
	if err != nil {
		return nil, err
	}
	var all []Interval
	for _, k := range keys {
		f := db.files[k]
		lines, err := f.AllLines()
		if err != nil {
			return nil, err
		}
		for i, line := range lines {
			iv, err := ParseLine(line)
			if err != nil {
				return nil, &ParseError{Path: f.Name(), Line: i + 1, Err: err}
			}
			all = append(all, iv)
		}
	}
	// all is already chronologically ascending (each file sorted, files in
	// ascending month order); assign IDs newest-first.
	n := len(all)
	for i := range all {
		all[i].ID = n - i
	}
	return all, nil
}

// Commit flushes every touched Datafile. Call this after all mutations in a
// transaction, before ending the journal transaction, so that either both
// durable writes happen or neither does (per §4.4's ordering guarantee).
func (db *Database) Commit() error {
	for _, f := range db.files {
		if err := f.Commit(); err != nil {
			return err
		}
	}
	return nil
}
