package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hlindberg/tt/internal/core"
)

// NowProvider provides the current time. Tests may replace Now for determinism.
type NowProvider func() time.Time

// Now is the package-level clock. Production code always goes through it so
// tests can freeze time without touching the system clock.
var Now NowProvider = func() time.Time { return nowLocal() }

// nowLocal returns the current time in the configured timezone.
func nowLocal() time.Time {
	loc := time.Local
	if tz := viper.GetString("timezone"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return time.Now().In(loc)
}

// dataRoot returns the database root holding data/*.data and
// data/undo.data — $HOME/.tt (which also holds config.yaml) unless
// overridden by the --data-dir flag or the data_dir config key.
func dataRoot() string {
	if v := viper.GetString("data_dir"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	return filepath.Join(home, ".tt")
}

// viperRuleView adapts viper's global registry to core.RuleView, so the
// storage engine never reaches into viper (or any config package) directly.
type viperRuleView struct{}

func (viperRuleView) GetBoolean(key string) bool { return viper.GetBool(key) }
func (viperRuleView) GetString(key string) string { return viper.GetString(key) }

// rules is the RuleView every command hands to core.Validate.
var rules core.RuleView = viperRuleView{}

// newDatabase opens the database and journal rooted at dataRoot(). Every
// command constructs its own handle; Datafiles are lazily loaded so this is
// cheap, and each command's mutations are wrapped in a single journal
// transaction via withJournalTxn.
func newDatabase() (*core.Database, *core.Journal) {
	root := dataRoot()
	j := core.NewJournal(filepath.Join(root, "data", "undo.data"))
	db := core.NewDatabase(filepath.Join(root, "data"), j)
	return db, j
}

// checkJournalHealth refuses to proceed if a prior run crashed mid-transaction,
// per the journal's refuse-and-repair recovery policy: the user must run
// `tt repair` before any further mutation is accepted.
func checkJournalHealth(j *core.Journal) {
	if err := j.CheckOpenTransaction(); err != nil {
		cobra.CheckErr(fmt.Errorf("%w (run `tt repair` to recover)", err))
	}
}

// withJournalTxn runs fn inside a single journal transaction: every mutation
// fn performs against db is recorded, then committed to disk and the journal
// is only marked closed once both datafiles and the journal itself are
// durable (spec's commit ordering guarantee). fn's error aborts the
// transaction without writing anything.
func withJournalTxn(db *core.Database, j *core.Journal, fn func() error) error {
	checkJournalHealth(j)
	if err := j.StartTransaction(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		j.Abort()
		return err
	}
	if err := db.Commit(); err != nil {
		j.Abort()
		return err
	}
	return j.EndTransaction(core.FromTime(Now()))
}

// exclusionProvider builds the configured weekend/off-hours exclusion rule
// from viper, or nil if exclusions.weekends and exclusions.off_hours_start
// are both unset (most installs: no exclusions).
func exclusionProvider() core.ExclusionProvider {
	if !viper.IsSet("exclusions.weekends") && !viper.IsSet("exclusions.off_hours_start") {
		return nil
	}
	return core.RuleExclusionProvider{Rules: rules}
}

// Rounding mirrors the billing-rounding knobs a report may apply.
type Rounding struct {
	Strategy     string // up|down|nearest
	QuantumMin   int
	MinimumEntry int
}

func getRounding() Rounding {
	q := viper.GetInt("rounding.quantum_min")
	if q == 0 {
		q = 15
	}
	return Rounding{
		Strategy:     viper.GetString("rounding.strategy"),
		QuantumMin:   q,
		MinimumEntry: viper.GetInt("rounding.minimum_billable_min"),
	}
}

func roundMinutes(min int, r Rounding) int {
	if min <= 0 {
		return 0
	}
	q := r.QuantumMin
	if q <= 0 {
		q = 15
	}
	switch r.Strategy {
	case "down":
		min = (min / q) * q
	case "nearest":
		rem := min % q
		if rem >= q/2 {
			min = ((min / q) + 1) * q
		} else {
			min = (min / q) * q
		}
	default: // up
		if min%q != 0 {
			min = ((min / q) + 1) * q
		}
	}
	if r.MinimumEntry > 0 && min < r.MinimumEntry {
		min = r.MinimumEntry
	}
	return min
}

func durationMinutes(i core.Interval) int {
	if i.IsOpen() {
		return int(Now().Sub(i.Start.Time()).Minutes())
	}
	return int(i.End.Time().Sub(i.Start.Time()).Minutes())
}

func fmtHHMM(min int) string {
	h := min / 60
	m := min % 60
	return fmt.Sprintf("%dh%02dm", h, m)
}

// parseRangeFlags resolves the --today/--week/--range flags shared by ls and
// report into a concrete [from, to] pair of calendar days. A --range of the
// form A..B is read as the dash range A-B.
func parseRangeFlags(today, week bool, rng string) (time.Time, time.Time) {
	now := nowLocal()
	if rng != "" {
		start, end, _, err := ParseFlexibleRange([]string{strings.Replace(rng, "..", "-", 1)}, now)
		if err == nil && !start.IsZero() {
			return start, end
		}
		cobra.CheckErr(fmt.Errorf("invalid --range %q", rng))
	}
	if week {
		wd := int(now.Weekday())
		if wd == 0 {
			wd = 7
		}
		monday := now.AddDate(0, 0, -(wd - 1))
		return monday, monday.AddDate(0, 0, 6)
	}
	// default and --today: today
	return now, now
}

// dayBounds converts a calendar-day pair (as returned by parseRangeFlags)
// into the half-open instant range core.AllInRange expects.
func dayBounds(from, to time.Time) (core.Instant, core.Instant) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	return core.FromTime(start), core.FromTime(end)
}

func isVerbose() bool { return rules.GetBoolean("verbose") }

func formatTS(i core.Instant) string {
	return i.Time().Local().Format("2006-01-02 15:04")
}

// mustParseIDs parses "@3"/"3"-style positional arguments into interval IDs.
func mustParseIDs(args []string) []int {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		s := strings.TrimPrefix(a, "@")
		n, err := strconv.Atoi(s)
		cobra.CheckErr(err)
		ids = append(ids, n)
	}
	return ids
}
