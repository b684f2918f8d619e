package core

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OpKind identifies the shape of a single reversible journal operation.
type OpKind int

const (
	OpCreate OpKind = iota
	OpDelete
	OpUpdate
)

// Op is one reversible operation recorded inside a transaction.
type Op struct {
	Kind   OpKind
	Before Interval // OpDelete, OpUpdate
	After  Interval // OpCreate, OpUpdate
}

// render serializes the op to its journal line ("undo <op> <args>").
func (o Op) render() string {
	switch o.Kind {
	case OpCreate:
		return "undo create " + o.After.Line()
	case OpDelete:
		return "undo delete " + o.Before.Line()
	case OpUpdate:
		return "undo update from " + o.Before.Line() + " to " + o.After.Line()
	default:
		return ""
	}
}

// Journal is the append-only undo log of committed transactions backing
// <root>/data/undo.data. A transaction groups the operations applied by one
// logical mutation; undo pops and reverses the newest transaction.
type Journal struct {
	path string

	open    bool
	pending []Op
}

// NewJournal opens the journal at path. It does not read the file; call
// CheckOpenTransaction to detect a crash-interrupted transaction before
// allowing further writes.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// CheckOpenTransaction scans the journal file for a txn-begin with no
// matching txn-end (the tail of the file, since transactions are appended
// whole). Per spec.md §5/§9, the core refuses to proceed in that case.
func (j *Journal) CheckOpenTransaction() error {
	f, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &IOError{Path: j.path, Op: "open", Err: err}
	}
	defer f.Close()

	depth := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "txn-begin"):
			depth++
		case line == "txn-end":
			depth--
		}
	}
	if err := scanner.Err(); err != nil {
		return &IOError{Path: j.path, Op: "scan", Err: err}
	}
	if depth > 0 {
		return &JournalOpenTransaction{Path: j.path}
	}
	return nil
}

// StartTransaction opens a new in-memory transaction. It fails if one is
// already open.
func (j *Journal) StartTransaction() error {
	if j.open {
		return fmt.Errorf("journal: a transaction is already open")
	}
	j.open = true
	j.pending = nil
	return nil
}

// RecordOp appends op to the currently open transaction.
func (j *Journal) RecordOp(op Op) error {
	if !j.open {
		return fmt.Errorf("journal: no transaction is open")
	}
	j.pending = append(j.pending, op)
	return nil
}

// Abort discards the pending in-memory transaction without writing
// anything to disk. Used when a mutation mid-transaction fails.
func (j *Journal) Abort() {
	j.open = false
	j.pending = nil
}

// EndTransaction atomically appends the complete transaction to the
// journal file and flushes it. Only after this returns successfully is the
// transaction durable in the user's view. A transaction with no recorded
// ops still appends an empty txn-begin/txn-end pair to keep the log simple
// to reason about.
func (j *Journal) EndTransaction(now Instant) error {
	if !j.open {
		return fmt.Errorf("journal: no transaction is open")
	}
	ops := j.pending
	j.open = false
	j.pending = nil

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return &IOError{Path: j.path, Op: "mkdir", Err: err}
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &IOError{Path: j.path, Op: "open-append", Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "txn-begin %s\n", now.String())
	for _, op := range ops {
		fmt.Fprintln(w, op.render())
	}
	fmt.Fprintln(w, "txn-end")
	if err := w.Flush(); err != nil {
		return &IOError{Path: j.path, Op: "write", Err: err}
	}
	if err := f.Sync(); err != nil {
		return &IOError{Path: j.path, Op: "sync", Err: err}
	}
	return nil
}

// transaction is one parsed "txn-begin ... txn-end" block.
type transaction struct {
	begin string
	ops   []Op
}

// readTransactions parses the whole journal file into its transactions, in
// file order (oldest first).
func (j *Journal) readTransactions() ([]transaction, error) {
	f, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Path: j.path, Op: "open", Err: err}
	}
	defer f.Close()

	var txns []transaction
	var cur *transaction
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "txn-begin"):
			cur = &transaction{begin: line}
		case line == "txn-end":
			if cur != nil {
				txns = append(txns, *cur)
				cur = nil
			}
		case strings.HasPrefix(line, "undo "):
			if cur == nil {
				return nil, &ParseError{Path: j.path, Line: lineNo, Err: fmt.Errorf("undo op outside of transaction")}
			}
			op, err := parseOp(strings.TrimPrefix(line, "undo "))
			if err != nil {
				return nil, &ParseError{Path: j.path, Line: lineNo, Err: err}
			}
			cur.ops = append(cur.ops, op)
		default:
			return nil, &ParseError{Path: j.path, Line: lineNo, Err: fmt.Errorf("unrecognized journal line: %q", line)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Path: j.path, Op: "scan", Err: err}
	}
	return txns, nil
}

func parseOp(body string) (Op, error) {
	switch {
	case strings.HasPrefix(body, "create "):
		iv, err := ParseLine(strings.TrimPrefix(body, "create "))
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpCreate, After: iv}, nil
	case strings.HasPrefix(body, "delete "):
		iv, err := ParseLine(strings.TrimPrefix(body, "delete "))
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpDelete, Before: iv}, nil
	case strings.HasPrefix(body, "update from "):
		rest := strings.TrimPrefix(body, "update from ")
		idx := strings.Index(rest, " to ")
		if idx < 0 {
			return Op{}, fmt.Errorf("malformed update op: %q", body)
		}
		before, err := ParseLine(rest[:idx])
		if err != nil {
			return Op{}, err
		}
		after, err := ParseLine(rest[idx+len(" to "):])
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpUpdate, Before: before, After: after}, nil
	default:
		return Op{}, fmt.Errorf("unrecognized op: %q", body)
	}
}

// Undo pops the newest transaction, replays its ops in reverse with inverse
// semantics against db, then truncates the journal file to remove that
// transaction. Returns NotFound-shaped error (as a plain error) if the
// journal has no transactions.
func (j *Journal) Undo(db *Database) error {
	txns, err := j.readTransactions()
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		return fmt.Errorf("journal: nothing to undo")
	}
	last := txns[len(txns)-1]
	if err := replayInverse(db, last.ops); err != nil {
		return err
	}
	return j.rewriteAll(txns[:len(txns)-1])
}

// replayInverse applies the inverse of each op in last, in reverse order.
func replayInverse(db *Database, ops []Op) error {
	for k := len(ops) - 1; k >= 0; k-- {
		op := ops[k]
		switch op.Kind {
		case OpCreate:
			if err := db.deleteIntervalRaw(op.After); err != nil {
				return err
			}
		case OpDelete:
			if err := db.addIntervalRaw(op.Before); err != nil {
				return err
			}
		case OpUpdate:
			if err := db.deleteIntervalRaw(op.After); err != nil {
				return err
			}
			if err := db.addIntervalRaw(op.Before); err != nil {
				return err
			}
		}
	}
	return nil
}

// rewriteAll atomically rewrites the journal file to contain exactly the
// given transactions (used by Undo to drop the most recent one).
func (j *Journal) rewriteAll(txns []transaction) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return &IOError{Path: j.path, Op: "mkdir", Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".journal-*.tmp")
	if err != nil {
		return &IOError{Path: j.path, Op: "create-temp", Err: err}
	}
	tmpPath := tmp.Name()
	w := bufio.NewWriter(tmp)
	for _, t := range txns {
		fmt.Fprintln(w, t.begin)
		for _, op := range t.ops {
			fmt.Fprintln(w, op.render())
		}
		fmt.Fprintln(w, "txn-end")
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Path: j.path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Path: j.path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpPath, j.path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Path: j.path, Op: "rename", Err: err}
	}
	return nil
}

// Repair resolves a JournalOpenTransaction by replaying the dangling
// transaction's ops in reverse (same as Undo would) and then dropping it
// from the file. It is safe to call even if there is no open transaction,
// in which case it is a no-op.
func (j *Journal) Repair(db *Database) error {
	f, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &IOError{Path: j.path, Op: "open", Err: err}
	}

	var closed []transaction
	var dangling *transaction
	var cur *transaction
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "txn-begin"):
			cur = &transaction{begin: line}
		case line == "txn-end":
			if cur != nil {
				closed = append(closed, *cur)
				cur = nil
			}
		case strings.HasPrefix(line, "undo "):
			if cur != nil {
				op, err := parseOp(strings.TrimPrefix(line, "undo "))
				if err == nil {
					cur.ops = append(cur.ops, op)
				}
			}
		}
	}
	f.Close()
	if cur != nil {
		dangling = cur
	}
	if dangling == nil {
		return nil
	}
	if err := replayInverse(db, dangling.ops); err != nil {
		return err
	}
	return j.rewriteAll(closed)
}
