package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// dayStat is a small shared struct used by the week timeline renderer.
type dayStat struct {
	secs int // total seconds that day
	cnt  int // number of entries touching that day
	ents []Entry
}

// RenderWeekTimeline renders a week view grouped by tag group (the joined,
// sorted tag set of each entry).
//
// - `entries` are the set of tracked intervals (may span days).
// - `weekStart` is the start of the 7-day window (should be at 00:00 of day in tz).
// - `tz` optional timezone; if nil time.Local is used.
// - `width` total available width for rendering (including the label column).
//
// Colors: running entries (End == nil) render Accent; closed entries render Good.
func RenderWeekTimeline(entries []Entry, weekStart time.Time, tz *time.Location, width int) string {
	if tz == nil {
		tz = time.Local
	}

	weekStart = time.Date(weekStart.In(tz).Year(), weekStart.In(tz).Month(), weekStart.In(tz).Day(), 0, 0, 0, 0, tz)

	groups := map[string][7]dayStat{}
	groupSet := map[string]struct{}{}

	for _, e := range entries {
		start := e.Start.In(tz)
		var end time.Time
		if e.End != nil {
			end = e.End.In(tz)
		} else {
			end = time.Now().In(tz)
		}

		weekEnd := weekStart.AddDate(0, 0, 7)
		if !start.Before(weekEnd) || !end.After(weekStart) {
			continue
		}

		if start.Before(weekStart) {
			start = weekStart
		}
		if end.After(weekEnd) {
			end = weekEnd
		}

		for d := 0; d < 7; d++ {
			dayStart := weekStart.AddDate(0, 0, d)
			dayEnd := dayStart.AddDate(0, 0, 1)

			segStart := maxTime(start, dayStart)
			segEnd := minTime(end, dayEnd)
			if !segStart.Before(segEnd) {
				continue
			}
			secs := int(segEnd.Sub(segStart).Seconds())
			group := tagGroupKey(e.Tags)
			groupSet[group] = struct{}{}
			arr := groups[group]
			ds := arr[d]
			ds.secs += secs
			ds.cnt++
			ds.ents = append(ds.ents, e)
			arr[d] = ds
			groups[group] = arr
		}
	}

	groupList := make([]string, 0, len(groupSet))
	for g := range groupSet {
		groupList = append(groupList, g)
	}
	sort.Strings(groupList)

	minLeft := 12
	maxLeft := 28
	leftW := min(maxLeft, max(minLeft, longestLen(append(groupList, "Tags"))+2))
	remaining := width - leftW - 2
	if remaining < 14 {
		return renderCompactWeek(groups, groupList, weekStart, tz, width)
	}
	dayW := remaining / 7
	if dayW < 6 {
		dayW = 6
	}

	var b strings.Builder
	titleLeft := EmphStyle.Render("Tags")
	b.WriteString(padRight(titleLeft, leftW))
	for d := 0; d < 7; d++ {
		day := weekStart.AddDate(0, 0, d)
		dayLabel := day.Format("Mon 02")
		b.WriteString(centerText(dayLabel, dayW))
	}
	b.WriteString("\n")

	for _, group := range groupList {
		groupName := ListItemStyle.Render(group)
		b.WriteString(padRight(groupName, leftW))

		for d := 0; d < 7; d++ {
			ds := groups[group][d]
			dayStart := weekStart.AddDate(0, 0, d)
			dayEnd := dayStart.AddDate(0, 0, 1)

			sort.SliceStable(ds.ents, func(i, j int) bool {
				return ds.ents[i].Start.Before(ds.ents[j].Start)
			})

			bgCols := make([]lipgloss.Color, dayW)
			for i := range bgCols {
				bgCols[i] = ColorSectionBg
			}
			for _, e := range ds.ents {
				est := maxTime(e.Start.In(tz), dayStart)
				eet := dayEnd
				if e.End != nil {
					eet = minTime(e.End.In(tz), dayEnd)
				} else {
					now := time.Now().In(tz)
					if now.Before(dayEnd) {
						eet = minTime(now, dayEnd)
					}
				}
				relStart := est.Sub(dayStart).Seconds()
				relEnd := eet.Sub(dayStart).Seconds()
				startCol := int((relStart / 86400.0) * float64(dayW))
				endCol := int((relEnd / 86400.0) * float64(dayW))
				if startCol < 0 {
					startCol = 0
				}
				if endCol > dayW {
					endCol = dayW
				}
				if endCol <= startCol {
					endCol = min(startCol+1, dayW)
				}
				bg := ColorGood
				if e.End == nil {
					bg = ColorAccent
				}
				for i := startCol; i < endCol; i++ {
					bgCols[i] = bg
				}
			}

			var cellBuilder strings.Builder
			i := 0
			for i < dayW {
				j := i + 1
				for j < dayW && bgCols[j] == bgCols[i] {
					j++
				}
				spanLen := j - i
				span := strings.Repeat(" ", spanLen)
				st := lipgloss.NewStyle().Background(bgCols[i]).Render(span)
				cellBuilder.WriteString(st)
				i = j
			}
			b.WriteString(cellBuilder.String())
		}

		weekSecs := 0
		weekCnt := 0
		for d := 0; d < 7; d++ {
			ds := groups[group][d]
			weekSecs += ds.secs
			weekCnt += ds.cnt
		}
		summary := "  " + fmtDurationShort(weekSecs)
		if weekCnt > 0 {
			summary += fmt.Sprintf(" (%d)", weekCnt)
		} else {
			summary += " (-)"
		}
		b.WriteString(" " + MutedStyle.Render(summary))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(buildLegend())

	return RenderSection("Week timelines", b.String(), width)
}

// tagGroupKey renders an entry's tag set as a stable, sorted, display key.
func tagGroupKey(tags []string) string {
	if len(tags) == 0 {
		return "(untagged)"
	}
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return "#" + strings.Join(sorted, " #")
}

// ---------- Helpers ----------

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func longestLen(ss []string) int {
	max := 0
	for _, s := range ss {
		l := lipgloss.Width(s)
		if l > max {
			max = l
		}
	}
	return max
}

func padRight(s string, w int) string {
	if lipgloss.Width(s) >= w {
		return lipgloss.NewStyle().Width(w).Render(s)
	}
	return s + strings.Repeat(" ", w-lipgloss.Width(s))
}

func centerText(s string, w int) string {
	if lipgloss.Width(s) >= w {
		return lipgloss.NewStyle().Width(w).Render(s)
	}
	padding := w - lipgloss.Width(s)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func fmtDurationShort(sec int) string {
	if sec <= 0 {
		return "0h0m"
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func buildLegend() string {
	var b strings.Builder
	legendItems := []struct {
		color lipgloss.Color
		label string
	}{
		{ColorAccent, "running"},
		{ColorGood, "closed"},
	}
	for _, it := range legendItems {
		sample := lipgloss.NewStyle().Background(it.color).Render("  ")
		b.WriteString(sample + " " + MutedStyle.Render(it.label) + "  ")
	}
	return b.String()
}

func renderCompactWeek(groups map[string][7]dayStat, groupList []string, weekStart time.Time, tz *time.Location, width int) string {
	var b strings.Builder
	for _, group := range groupList {
		line := EmphStyle.Render(group)
		b.WriteString(line + "\n")
		for d := 0; d < 7; d++ {
			ds := groups[group][d]
			day := weekStart.AddDate(0, 0, d)
			dayLabel := day.Format("Mon")
			s := fmt.Sprintf("  %s: %s (%d)\n", dayLabel, fmtDurationShort(ds.secs), ds.cnt)
			b.WriteString(MutedStyle.Render(s))
		}
		b.WriteString("\n")
	}
	return b.String()
}
