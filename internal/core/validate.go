package core

import (
	"fmt"
	"io"
)

// Validate is the single entry point for reconciling a candidate interval
// against recorded history, per spec.md §4.7's linear state machine:
// INIT -> FILLED? -> PRE_ADJUSTED? -> OVERLAP_RESOLVED -> DONE.
//
// It returns the (possibly fill-extended) interval and whether the caller
// must still insert it into db — false only in the "open interval encloses
// the new one with identical tags" no-op case. Any returned error leaves
// the caller responsible for rolling back the current journal transaction.
func Validate(rules RuleView, db *Database, provider ExclusionProvider, req Request, out io.Writer) (Interval, bool, error) {
	interval := req.Interval
	if out == nil {
		out = io.Discard
	}

	if req.Fill {
		if err := autoFill(rules, db, &interval, out); err != nil {
			return interval, false, err
		}
	}

	add, err := autoAdjust(req.Adjust, rules, db, provider, &interval, out)
	return interval, add, err
}

// autoFill extends interval.Start backwards to meet the nearest preceding
// closed interval's end, and (if interval is closed) extends interval.End
// forwards to meet the nearest following interval's start. Exclusions are
// not boundaries here — only recorded intervals are.
func autoFill(rules RuleView, db *Database, interval *Interval, out io.Writer) error {
	tracked, err := GetTracked(db, rules, AllInRange{})
	if err != nil {
		return err
	}

	verbose := rules != nil && rules.GetBoolean("verbose")

	for k := len(tracked) - 1; k >= 0; k-- {
		earlier := tracked[k]
		if !earlier.IsOpen() && earlier.End <= interval.Start {
			interval.Start = earlier.End
			if verbose {
				fmt.Fprintf(out, "Backfilled %sto %s\n", idPrefix(interval.ID), interval.Start)
			}
			break
		}
	}

	if !interval.IsOpen() {
		for _, later := range tracked {
			if interval.End <= later.Start {
				interval.End = later.Start
				if verbose {
					fmt.Fprintf(out, "Filled %sto %s\n", idPrefix(interval.ID), interval.End)
				}
				break
			}
		}
	}
	return nil
}

func idPrefix(id int) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("@%d ", id)
}

// autoAdjust resolves overlaps between interval and recorded history,
// per spec.md §4.7's overwrite-resolution table. All modifications go
// through Database methods so the journal captures them.
func autoAdjust(adjust bool, rules RuleView, db *Database, provider ExclusionProvider, interval *Interval, out io.Writer) (bool, error) {
	verbose := rules != nil && rules.GetBoolean("verbose")

	latest, hasLatest, err := GetLatestInterval(db)
	if err != nil {
		return false, err
	}

	if hasLatest && interval.IsOpen() && latest.Encloses(*interval) {
		if tagSetEqual(latest.Tags, interval.Tags) {
			return false, nil
		}

		if err := db.DeleteInterval(latest); err != nil {
			return false, err
		}
		latest.End = interval.Start

		var exclusions []Interval
		if provider != nil {
			exclusions, err = GetAllExclusions(provider, latest)
			if err != nil {
				return false, err
			}
		}
		for _, sub := range Flatten(latest, exclusions) {
			if sub.IsEmpty() {
				continue
			}
			if err := db.AddInterval(sub, verbose); err != nil {
				return false, err
			}
			if verbose {
				fmt.Fprintf(out, "Recorded %s\n", sub.Dump())
			}
		}
	}

	overlaps, err := GetTracked(db, rules, AllInRange{Start: interval.Start, End: interval.End})
	if err != nil {
		return false, err
	}
	if len(overlaps) == 0 {
		return true, nil
	}

	if !adjust {
		return false, &OverlapError{}
	}

	for _, overlap := range overlaps {
		startWithin := interval.StartsWithin(overlap)
		endWithin := interval.EndsWithin(overlap)

		switch {
		case startWithin && !endWithin:
			modified := overlap
			modified.End = interval.Start
			if modified.IsEmpty() {
				if err := db.DeleteInterval(overlap); err != nil {
					return false, err
				}
			} else if err := db.ModifyInterval(overlap, modified, verbose); err != nil {
				return false, err
			}

		case !startWithin && endWithin:
			modified := overlap
			modified.Start = interval.End
			if modified.IsEmpty() {
				if err := db.DeleteInterval(overlap); err != nil {
					return false, err
				}
			} else if err := db.ModifyInterval(overlap, modified, verbose); err != nil {
				return false, err
			}

		case !startWithin && !endWithin:
			if err := db.DeleteInterval(overlap); err != nil {
				return false, err
			}

		default: // both within: split
			split1 := overlap
			split2 := overlap
			split1.End = interval.Start
			split2.Start = interval.End

			if split1.IsEmpty() {
				if err := db.DeleteInterval(overlap); err != nil {
					return false, err
				}
			} else if err := db.ModifyInterval(overlap, split1, verbose); err != nil {
				return false, err
			}

			if !split2.IsEmpty() {
				if err := db.AddInterval(split2, verbose); err != nil {
					return false, err
				}
			}
		}
	}
	return true, nil
}
