package core

import "time"

// ExclusionProvider yields a finite, non-overlapping, chronologically
// ordered sequence of exclusion intervals intersecting [a, b). Exclusions
// are closed-time blocks where tracking "doesn't count" (weekends,
// holidays, off-hours); the core treats them as read-only.
type ExclusionProvider interface {
	Exclusions(a, b Instant) ([]Interval, error)
}

// RuleExclusionProvider derives exclusions from a RuleView: weekends (if
// "exclusions.weekends" is true) and a daily off-hours window (if
// "exclusions.off_hours_start"/"exclusions.off_hours_end" are set, as
// "HH:MM" strings). It walks day-by-day across [a, b) and emits one
// exclusion interval per excluded day or per excluded off-hours window.
type RuleExclusionProvider struct {
	Rules RuleView
}

func (p RuleExclusionProvider) Exclusions(a, b Instant) ([]Interval, error) {
	if p.Rules == nil || a >= b {
		return nil, nil
	}
	weekends := p.Rules.GetBoolean("exclusions.weekends")
	start := p.Rules.GetString("exclusions.off_hours_start")
	end := p.Rules.GetString("exclusions.off_hours_end")

	var out []Interval
	dayStart := time.Unix(int64(a), 0).UTC()
	dayStart = time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, time.UTC)
	limit := time.Unix(int64(b), 0).UTC()

	for d := dayStart; d.Before(limit); d = d.AddDate(0, 0, 1) {
		if weekends && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			dayEnd := d.AddDate(0, 0, 1)
			out = append(out, Interval{Start: FromTime(d), End: FromTime(dayEnd), Tags: []string{"weekend"}})
			continue
		}
		if start != "" && end != "" {
			out = append(out, offHoursWindow(d, start, end)...)
		}
	}
	return clipAll(out, a, b), nil
}

func offHoursWindow(day time.Time, start, end string) []Interval {
	sh, sm, ok1 := parseHHMM(start)
	eh, em, ok2 := parseHHMM(end)
	if !ok1 || !ok2 {
		return nil
	}
	// off-hours run from `end` of one day to `start` of the next, i.e. the
	// complement of the working window [start, end) on that day: emitted
	// per day as [00:00, start) and [end, 24:00), skipping empty parts.
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	workStart := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, time.UTC)
	workEnd := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, time.UTC)
	if !workEnd.After(workStart) {
		return nil
	}
	nextDayStart := dayStart.AddDate(0, 0, 1)
	var out []Interval
	if workStart.After(dayStart) {
		out = append(out, Interval{Start: FromTime(dayStart), End: FromTime(workStart), Tags: []string{"off-hours"}})
	}
	return append(out, Interval{Start: FromTime(workEnd), End: FromTime(nextDayStart), Tags: []string{"off-hours"}})
}

func parseHHMM(s string) (h, m int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	h = int(s[0]-'0')*10 + int(s[1]-'0')
	m = int(s[3]-'0')*10 + int(s[4]-'0')
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// clipAll clips each interval to [a, b) and drops any that become empty.
func clipAll(in []Interval, a, b Instant) []Interval {
	out := make([]Interval, 0, len(in))
	for _, iv := range in {
		start := clampInstant(iv.Start, a, b)
		end := clampInstant(iv.End, a, b)
		if end > start {
			out = append(out, Interval{Start: start, End: end, Tags: iv.Tags})
		}
	}
	return out
}
