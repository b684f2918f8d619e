package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestParseFlexibleRange_ExtraCases adds coverage for the remaining smarter time input forms
// such as now-anchored ranges and plain duration tokens.
func TestParseFlexibleRange_ExtraCases(t *testing.T) {
	viper.Set("timezone", "UTC")
	anchor := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	oldNow := Now
	Now = func() time.Time { return anchor }
	defer func() { Now = oldNow }()

	tests := []struct {
		name     string
		tokens   []string
		wantSt   time.Time
		wantEn   time.Time
		wantCons int
		wantErr  bool
	}{
		{
			name:     "now-30m single dashed token",
			tokens:   []string{"now-30m"},
			wantSt:   anchor.Add(-30 * time.Minute),
			wantEn:   anchor,
			wantCons: 1,
		},
		{
			name:     "2h-now (duration-left anchored to now)",
			tokens:   []string{"2h-now"},
			wantSt:   anchor.Add(-2 * time.Hour),
			wantEn:   anchor,
			wantCons: 1,
		},
		{
			name:     "start + plain minutes duration (13:00 45)",
			tokens:   []string{"13:00", "45"},
			wantSt:   time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 13, 0, 0, 0, time.UTC),
			wantEn:   time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 13, 45, 0, 0, time.UTC),
			wantCons: 2,
		},
		{
			name:   "plain duration token as start-only (+30m) -> interpreted as start relative to Now",
			tokens: []string{"+30m"},
			wantSt: anchor.Add(30 * time.Minute),
			wantEn: time.Time{},
			wantCons: 1,
		},
		{
			name:     "now single token",
			tokens:   []string{"now"},
			wantSt:   anchor,
			wantEn:   time.Time{},
			wantCons: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, en, cons, err := ParseFlexibleRange(tc.tokens, Now())
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if cons != tc.wantCons {
				t.Fatalf("consumed tokens mismatch: got %d want %d", cons, tc.wantCons)
			}
			if !st.Equal(tc.wantSt) {
				t.Fatalf("start mismatch: got %v want %v", st, tc.wantSt)
			}
			if tc.wantEn.IsZero() {
				if !en.IsZero() {
					t.Fatalf("expected end to be zero; got %v", en)
				}
			} else {
				if !en.Equal(tc.wantEn) {
					t.Fatalf("end mismatch: got %v want %v", en, tc.wantEn)
				}
			}
		})
	}
}

// TestAddCommandDashRangeWithTags exercises `tt add` end-to-end with the
// dash-range and duration forms of ParseFlexibleRange, checking the interval
// actually recorded in the database.
func TestAddCommandDashRangeWithTags(t *testing.T) {
	setupDataDir(t)
	anchor := time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC)
	setClock(t, anchor)

	tests := []struct {
		name       string
		args       []string
		wantStart  time.Time
		wantEnd    time.Time
		wantMinute int
	}{
		{
			name:       "dash range with trailing tags",
			args:       []string{"9-12", "acme", "portal"},
			wantStart:  time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 9, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 12, 0, 0, 0, time.UTC),
			wantMinute: 180,
		},
		{
			name:       "time plus duration with trailing tags",
			args:       []string{"13:00", "+45m", "acme", "mobilize"},
			wantStart:  time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 13, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 13, 45, 0, 0, time.UTC),
			wantMinute: 45,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setupDataDir(t)
			addTags, addNote, addFill, addAdjust = nil, "", false, false
			addCmd.Run(addCmd, tc.args)

			tracked := readTracked(t)
			if len(tracked) != 1 {
				t.Fatalf("expected 1 tracked interval, got %d", len(tracked))
			}
			iv := tracked[0]
			if !iv.Start.Time().UTC().Equal(tc.wantStart) {
				t.Fatalf("start mismatch: got %v want %v", iv.Start.Time().UTC(), tc.wantStart)
			}
			if !iv.End.Time().UTC().Equal(tc.wantEnd) {
				t.Fatalf("end mismatch: got %v want %v", iv.End.Time().UTC(), tc.wantEnd)
			}
			if durationMinutes(iv) != tc.wantMinute {
				t.Fatalf("duration mismatch: got %d want %d", durationMinutes(iv), tc.wantMinute)
			}
		})
	}
}
