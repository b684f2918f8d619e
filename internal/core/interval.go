package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Instant is a whole number of seconds since the Unix epoch, UTC.
type Instant int64

// Zero is the sentinel "no end" / "not set" value.
const Zero Instant = 0

const isoLayout = "2006-01-02T15:04:05Z"

// ParseISO parses the storage format's UTC timestamp ("YYYY-MM-DDThh:mm:ssZ").
func ParseISO(s string) (Instant, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return 0, &ParseError{Field: "timestamp", Err: err}
	}
	return Instant(t.Unix()), nil
}

// String renders the instant in the storage format, in UTC.
func (i Instant) String() string {
	return time.Unix(int64(i), 0).UTC().Format(isoLayout)
}

// Time returns the instant as a time.Time in UTC.
func (i Instant) Time() time.Time { return time.Unix(int64(i), 0).UTC() }

// FromTime truncates t to whole seconds and converts to an Instant (UTC).
func FromTime(t time.Time) Instant { return Instant(t.Unix()) }

// Interval is a tagged half-open time range [Start, End), or [Start, +inf)
// when open (End == Zero).
type Interval struct {
	Start      Instant
	End        Instant
	Tags       []string // canonical: unique, lexicographically sorted
	Annotation string
	ID         int // assigned on read only; never persisted
}

// New constructs a closed interval with a canonicalized tag set.
func New(start, end Instant, tags []string, annotation string) Interval {
	return Interval{Start: start, End: end, Tags: canonicalTags(tags), Annotation: annotation}
}

// NewOpen constructs an open interval.
func NewOpen(start Instant, tags []string, annotation string) Interval {
	return Interval{Start: start, Tags: canonicalTags(tags), Annotation: annotation}
}

func canonicalTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsOpen reports whether the interval has no end (is currently running).
func (i Interval) IsOpen() bool { return i.End == Zero }

// IsEmpty reports whether the interval is closed and zero-duration.
func (i Interval) IsEmpty() bool { return !i.IsOpen() && i.End == i.Start }

// effectiveEnd treats an open interval's end as +inf for comparisons.
func (i Interval) effectiveEnd() Instant {
	if i.IsOpen() {
		return Instant(1<<63 - 1)
	}
	return i.End
}

// Encloses reports whether other lies entirely within i: i.Start <= other.Start
// and (i is open, or other.End <= i.End and other is not open).
func (i Interval) Encloses(other Interval) bool {
	if i.Start > other.Start {
		return false
	}
	if i.IsOpen() {
		return true
	}
	if other.IsOpen() {
		return false
	}
	return other.End <= i.End
}

// StartsWithin reports whether i.Start falls strictly inside other:
// other.Start < i.Start < other.End, an open other counting as unbounded
// (half-open: a start exactly at a boundary does not count as within).
func (i Interval) StartsWithin(other Interval) bool {
	return other.Start < i.Start && i.Start < other.effectiveEnd()
}

// EndsWithin reports whether i.End falls strictly inside other, the same way.
func (i Interval) EndsWithin(other Interval) bool {
	if i.IsOpen() {
		return false
	}
	return other.Start < i.End && i.End < other.effectiveEnd()
}

// Intersects reports whether the two half-open ranges overlap at all.
func (i Interval) Intersects(other Interval) bool {
	return i.Start < other.effectiveEnd() && other.Start < i.effectiveEnd()
}

// HasTag reports whether tag is present in the interval's tag set.
func (i Interval) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tag returns a copy of i with tag added (a no-op if already present).
func (i Interval) Tag(tag string) Interval {
	if i.HasTag(tag) {
		return i
	}
	out := i
	out.Tags = canonicalTags(append(append([]string{}, i.Tags...), tag))
	return out
}

// Untag returns a copy of i with tag removed.
func (i Interval) Untag(tag string) Interval {
	if !i.HasTag(tag) {
		return i
	}
	kept := make([]string, 0, len(i.Tags))
	for _, t := range i.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	out := i
	out.Tags = canonicalTags(kept)
	return out
}

// tagSetEqual compares two tag sets for set-equality, order-insensitive.
func tagSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	// both are canonical (sorted, unique) by construction
	as, bs := canonicalTags(a), canonicalTags(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Equal compares start, end, tags (as a set) and annotation. ID is excluded,
// since it is a read-time artifact, not part of interval identity.
func (i Interval) Equal(other Interval) bool {
	return i.Start == other.Start &&
		i.End == other.End &&
		i.Annotation == other.Annotation &&
		tagSetEqual(i.Tags, other.Tags)
}

// Dump renders a compact, human-readable single-line debug form.
func (i Interval) Dump() string {
	end := "-"
	if !i.IsOpen() {
		end = i.End.String()
	}
	id := ""
	if i.ID != 0 {
		id = fmt.Sprintf("@%d ", i.ID)
	}
	ann := ""
	if i.Annotation != "" {
		ann = fmt.Sprintf(" annotation:%q", i.Annotation)
	}
	return fmt.Sprintf("%s[%s - %s)%s #%s", id, i.Start.String(), end, ann, strings.Join(i.Tags, " "))
}

// Line serializes the interval to the storage line grammar described in
// spec.md §3/§6:
//
//	inc <startISO> [- <endISO>] [annotation:"..."] [# tags...]
func (i Interval) Line() string {
	var b strings.Builder
	b.WriteString("inc ")
	b.WriteString(i.Start.String())
	if !i.IsOpen() {
		b.WriteString(" - ")
		b.WriteString(i.End.String())
	}
	if i.Annotation != "" {
		b.WriteString(" annotation:")
		b.WriteString(quoteTag(i.Annotation))
	}
	if len(i.Tags) > 0 {
		b.WriteString(" #")
		for _, t := range i.Tags {
			b.WriteString(" ")
			b.WriteString(encodeTag(t))
		}
	}
	return b.String()
}

// encodeTag quotes a tag if it contains whitespace, a quote or a backslash;
// otherwise it is written bare.
func encodeTag(tag string) string {
	if strings.IndexFunc(tag, func(r rune) bool { return r == ' ' || r == '\t' || r == '"' || r == '\\' }) == -1 {
		return tag
	}
	return quoteTag(tag)
}

// quoteTag backslash-escapes '"' and '\' and wraps the result in quotes.
func quoteTag(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// ParseLine parses one "inc ..." storage line back into an Interval.
// ParseError names the offending field: malformed timestamps, an
// unbalanced quote in the tag list, or end-before-start.
func ParseLine(line string) (Interval, error) {
	fields, err := tokenizeLine(line)
	if err != nil {
		return Interval{}, err
	}
	if len(fields) == 0 || fields[0] != "inc" {
		return Interval{}, &ParseError{Field: "keyword", Err: fmt.Errorf("expected line to start with %q", "inc")}
	}
	fields = fields[1:]
	if len(fields) == 0 {
		return Interval{}, &ParseError{Field: "start", Err: fmt.Errorf("missing start timestamp")}
	}

	start, err := ParseISO(fields[0])
	if err != nil {
		return Interval{}, err
	}
	fields = fields[1:]

	var end Instant
	if len(fields) > 0 && fields[0] == "-" {
		fields = fields[1:]
		if len(fields) == 0 {
			return Interval{}, &ParseError{Field: "end", Err: fmt.Errorf("missing end timestamp after '-'")}
		}
		end, err = ParseISO(fields[0])
		if err != nil {
			return Interval{}, err
		}
		fields = fields[1:]
		if end <= start {
			return Interval{}, &ParseError{Field: "end", Err: fmt.Errorf("end (%s) must be after start (%s)", end, start)}
		}
	}

	var annotation string
	for len(fields) > 0 {
		if !strings.Contains(fields[0], ":") || fields[0] == "#" {
			break
		}
		k, v, ok := strings.Cut(fields[0], ":")
		if !ok {
			break
		}
		if k == "annotation" {
			annotation = unquoteTag(v)
		}
		fields = fields[1:]
	}

	var tags []string
	if len(fields) > 0 && fields[0] == "#" {
		fields = fields[1:]
		for _, f := range fields {
			tags = append(tags, unquoteTag(f))
		}
	}

	return Interval{Start: start, End: end, Tags: canonicalTags(tags), Annotation: annotation}, nil
}

// tokenizeLine splits a line into whitespace-separated tokens, keeping
// quoted substrings (with backslash escapes) intact as single tokens.
// "#" always becomes a standalone token so callers can find the tag
// section boundary.
func tokenizeLine(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(line)
	for idx := 0; idx < len(runes); idx++ {
		r := runes[idx]
		switch {
		case inQuote:
			if r == '\\' && idx+1 < len(runes) {
				cur.WriteRune(r)
				idx++
				cur.WriteRune(runes[idx])
				continue
			}
			cur.WriteRune(r)
			if r == '"' {
				inQuote = false
			}
		case r == '"':
			cur.WriteRune(r)
			inQuote = true
		case r == ' ' || r == '\t':
			flush()
		case r == '#' && cur.Len() == 0:
			tokens = append(tokens, "#")
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	if inQuote {
		return nil, &ParseError{Field: "tags", Err: fmt.Errorf("unbalanced quote")}
	}
	return tokens, nil
}

// unquoteTag strips surrounding quotes (if present) and unescapes \" and \\.
func unquoteTag(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		inner := s[1 : len(s)-1]
		var b strings.Builder
		runes := []rune(inner)
		for i := 0; i < len(runes); i++ {
			if runes[i] == '\\' && i+1 < len(runes) {
				i++
				b.WriteRune(runes[i])
				continue
			}
			b.WriteRune(runes[i])
		}
		return b.String()
	}
	return s
}

// clampInstant restricts v to [lo, hi]; used by the flattener when clipping
// exclusions to an interval's range.
func clampInstant(v, lo, hi Instant) Instant {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
