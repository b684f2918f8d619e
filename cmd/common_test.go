package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/hlindberg/tt/internal/core"
)

// setupDataDir points dataRoot() at a fresh temp directory for the duration
// of the test and restores the previous value afterwards.
func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := viper.GetString("data_dir")
	viper.Set("data_dir", dir)
	t.Cleanup(func() { viper.Set("data_dir", prev) })
	return dir
}

// setClock freezes Now() to a movable instant, returning a pointer the test
// can advance between command invocations so ordering stays deterministic
// despite core.Instant's one-second resolution.
func setClock(t *testing.T, start time.Time) *time.Time {
	t.Helper()
	cur := start
	prev := Now
	Now = func() time.Time { return cur }
	t.Cleanup(func() { Now = prev })
	return &cur
}

func readTracked(t *testing.T) []core.Interval {
	t.Helper()
	db, _ := newDatabase()
	tracked, err := core.GetTracked(db, rules, nil)
	if err != nil {
		t.Fatalf("GetTracked: %v", err)
	}
	return tracked
}

func TestRoundMinutesStrategies(t *testing.T) {
	cases := []struct {
		min      int
		r        Rounding
		expected int
	}{
		{50, Rounding{Strategy: "up", QuantumMin: 15}, 60},
		{50, Rounding{Strategy: "down", QuantumMin: 15}, 45},
		{36, Rounding{Strategy: "nearest", QuantumMin: 15}, 30},
		{37, Rounding{Strategy: "nearest", QuantumMin: 15}, 45},
		{5, Rounding{Strategy: "up", QuantumMin: 15, MinimumEntry: 15}, 15},
	}
	for _, c := range cases {
		if got := roundMinutes(c.min, c.r); got != c.expected {
			t.Errorf("roundMinutes(%d, %+v) = %d, want %d", c.min, c.r, got, c.expected)
		}
	}
}

func TestFmtHHMM(t *testing.T) {
	if got := fmtHHMM(90); got != "1h30m" {
		t.Errorf("fmtHHMM(90) = %q, want 1h30m", got)
	}
}

func TestMustParseIDs(t *testing.T) {
	ids := mustParseIDs([]string{"@3", "7"})
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 7 {
		t.Fatalf("mustParseIDs = %v", ids)
	}
}

func TestJoinTags(t *testing.T) {
	if got := joinTags([]string{"a", "b"}); got != "a #b" {
		t.Fatalf("joinTags = %q", got)
	}
	if got := joinTags(nil); got != "" {
		t.Fatalf("joinTags(nil) = %q, want empty", got)
	}
}
