package core

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Datafile owns one calendar month's worth of interval lines, stored as
// append-only text at <root>/data/YYYY-MM.data. It lazily loads its lines
// on first access and only rewrites the file when dirty.
type Datafile struct {
	path string

	day1 Instant // first second of the month
	dayN Instant // first second of the following month

	lines       []string
	linesLoaded bool
	dirty       bool

	exclusions []string
}

// NewDatafile constructs a Datafile for the given path without touching
// disk. The path's basename must be "YYYY-MM.data".
func NewDatafile(path string) (*Datafile, error) {
	d := &Datafile{path: path}
	if err := d.initialize(path); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Datafile) initialize(path string) error {
	d.path = path
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".data")
	t, err := time.Parse("2006-01", base)
	if err != nil {
		return &ParseError{Path: path, Field: "month", Err: err}
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	d.day1 = FromTime(first)
	d.dayN = FromTime(next)
	return nil
}

// Name returns the datafile's path.
func (d *Datafile) Name() string { return d.path }

// Month returns the [day1, dayN) boundaries this file owns.
func (d *Datafile) Month() (Instant, Instant) { return d.day1, d.dayN }

// pathForMonth computes the canonical "YYYY-MM.data" path for an instant
// under the given data directory.
func pathForMonth(dataDir string, i Instant) string {
	t := i.Time()
	return filepath.Join(dataDir, t.Format("2006-01")+".data")
}

func (d *Datafile) load() error {
	if d.linesLoaded {
		return nil
	}
	d.linesLoaded = true
	f, err := os.Open(d.path)
	if os.IsNotExist(err) {
		d.lines = nil
		return nil
	}
	if err != nil {
		return &IOError{Path: d.path, Op: "open", Err: err}
	}
	defer f.Close()

	var excl []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "exc ") {
			// Exclusion lines are preserved but not parsed as intervals here;
			// the exclusion provider is responsible for interpreting them.
			excl = append(excl, line)
			continue
		}
		d.lines = append(d.lines, line)
	}
	if err := scanner.Err(); err != nil {
		return &IOError{Path: d.path, Op: "scan", Err: err}
	}
	// Keep the on-disk exclusion lines for Commit unless SetExclusions has
	// already replaced them.
	if d.exclusions == nil {
		d.exclusions = excl
	}
	return nil
}

// AllLines returns every "inc ..." line in the file, lazily loading on
// first call.
func (d *Datafile) AllLines() ([]string, error) {
	if err := d.load(); err != nil {
		return nil, err
	}
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out, nil
}

// LastLine returns the most recent line (chronologically last), or ""
// if the file is empty.
func (d *Datafile) LastLine() (string, error) {
	if err := d.load(); err != nil {
		return "", err
	}
	if len(d.lines) == 0 {
		return "", nil
	}
	return d.lines[len(d.lines)-1], nil
}

// SetExclusions scopes the given raw "exc ..." lines to this file's month;
// they are written at the top of the file on commit and otherwise ignored
// for read semantics.
func (d *Datafile) SetExclusions(lines []string) {
	d.exclusions = append([]string{}, lines...)
	d.dirty = true
}

// accepts reports whether i.Start falls in this file's month.
func (d *Datafile) accepts(i Interval) bool {
	return i.Start >= d.day1 && i.Start < d.dayN
}

// AddInterval appends i in chronological order if its start falls within
// this file's month. Returns false (and leaves the file untouched) if i's
// start lies outside the month.
func (d *Datafile) AddInterval(i Interval) (bool, error) {
	if !d.accepts(i) {
		return false, nil
	}
	if err := d.load(); err != nil {
		return false, err
	}
	line := i.Line()
	idx := sort.Search(len(d.lines), func(n int) bool {
		return lineStart(d.lines[n]) > i.Start
	})
	d.lines = append(d.lines, "")
	copy(d.lines[idx+1:], d.lines[idx:])
	d.lines[idx] = line
	d.dirty = true
	return true, nil
}

// DeleteInterval removes the line matching i's canonical serialization.
// Returns false if no matching line was found.
func (d *Datafile) DeleteInterval(i Interval) (bool, error) {
	if err := d.load(); err != nil {
		return false, err
	}
	target := i.Line()
	for idx, line := range d.lines {
		if line == target {
			d.lines = append(d.lines[:idx], d.lines[idx+1:]...)
			d.dirty = true
			return true, nil
		}
	}
	return false, nil
}

// lineStart extracts the start Instant from a raw "inc ..." line without
// fully parsing it, used only to keep AddInterval's binary search cheap.
func lineStart(line string) Instant {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	i, err := ParseISO(fields[1])
	if err != nil {
		return 0
	}
	return i
}

// Commit atomically rewrites the file (temp file + rename) if dirty; it is
// a no-op otherwise.
func (d *Datafile) Commit() error {
	if !d.dirty {
		return nil
	}
	if err := d.load(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return &IOError{Path: d.path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".datafile-*.tmp")
	if err != nil {
		return &IOError{Path: d.path, Op: "create-temp", Err: err}
	}
	tmpPath := tmp.Name()
	w := bufio.NewWriter(tmp)
	for _, e := range d.exclusions {
		fmt.Fprintln(w, e)
	}
	for _, l := range d.lines {
		fmt.Fprintln(w, l)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Path: d.path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Path: d.path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Path: d.path, Op: "rename", Err: err}
	}
	d.dirty = false
	return nil
}

// Dump renders a small debug summary of the file's state.
func (d *Datafile) Dump() string {
	return fmt.Sprintf("%s [%s, %s) dirty=%v lines=%d",
		d.path, d.day1, d.dayN, d.dirty, len(d.lines))
}
