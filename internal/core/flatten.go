package core

// Flatten produces the sub-intervals of i that avoid the union of
// exclusions, per spec.md §4.6:
//
//  1. Clip exclusions to [i.Start, i.End); drop empties.
//  2. Walk exclusions in order, emitting [cursor, e.Start) before each one,
//     then advancing cursor past it.
//  3. Emit the final [cursor, i.End).
//
// Each emitted sub-interval inherits i's tags and annotation; its ID is
// unset. Empty results may appear and must be filtered by callers (P4).
func Flatten(i Interval, exclusions []Interval) []Interval {
	clipped := clipAll(exclusions, i.Start, i.End)

	var out []Interval
	cursor := i.Start
	for _, e := range clipped {
		if e.Start > cursor {
			out = append(out, Interval{Start: cursor, End: e.Start, Tags: i.Tags, Annotation: i.Annotation})
		}
		if e.End > cursor {
			cursor = e.End
		}
	}
	if i.End > cursor {
		out = append(out, Interval{Start: cursor, End: i.End, Tags: i.Tags, Annotation: i.Annotation})
	}
	return out
}
