package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hlindberg/tt/internal/core"
	ui "github.com/hlindberg/tt/internal/tui"
)

// tuiCmd provides an interactive TUI for tt using Bubble Tea.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal UI (space: start/stop, n: note, s: start/switch form, t: timelines, q/Esc: quit)",
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs := ui.Services{
			Journal: coreJournal{},
			Writer:  coreWriter{},
			Watch:   ui.NewFSNotifyJournalWatch(dataRoot(), 0),
			Config:  coreConfig{},
		}
		m := ui.NewAppModel(svcs)
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			log.Printf("tui exited with error: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// -------- Concrete services backing the TUI app model --------

// coreJournal adapts the storage engine to the TUI's JournalService.
type coreJournal struct{}

func toUIEntry(iv core.Interval) ui.Entry {
	e := ui.Entry{
		ID:         fmt.Sprintf("%d", iv.ID),
		Start:      iv.Start.Time(),
		Tags:       iv.Tags,
		Annotation: iv.Annotation,
	}
	if !iv.IsOpen() {
		end := iv.End.Time()
		e.End = &end
	}
	return e
}

func (coreJournal) LoadEntries(ctx context.Context, from, to time.Time) ([]ui.Entry, error) {
	db, _ := newDatabase()
	tracked, err := core.GetTracked(db, rules, core.AllInRange{Start: core.FromTime(from), End: core.FromTime(to)})
	if err != nil {
		return nil, err
	}
	out := make([]ui.Entry, 0, len(tracked))
	for _, iv := range tracked {
		out = append(out, toUIEntry(iv))
	}
	return out, nil
}

func (coreJournal) FindActiveAndLast(ctx context.Context, from, to time.Time) (*ui.Entry, *ui.Entry, error) {
	db, _ := newDatabase()
	tracked, err := core.GetTracked(db, rules, core.AllInRange{Start: core.FromTime(from), End: core.FromTime(to)})
	if err != nil {
		return nil, nil, err
	}
	if len(tracked) == 0 {
		return nil, nil, nil
	}

	var active, last *core.Interval
	for i := range tracked {
		iv := tracked[i]
		if iv.IsOpen() {
			active = &tracked[i]
			continue
		}
		if last == nil || iv.Start > last.Start {
			last = &tracked[i]
		}
	}

	var au, lu *ui.Entry
	if active != nil {
		x := toUIEntry(*active)
		au = &x
	}
	if last != nil {
		x := toUIEntry(*last)
		lu = &x
	}
	return au, lu, nil
}

func (coreJournal) KnownTags(ctx context.Context) ([]string, error) {
	return knownTags(), nil
}

// coreWriter mutates intervals via the same validated, journaled path the CLI
// commands use, so the TUI can never diverge from `tt start`/`tt add` semantics.
type coreWriter struct{}

func (coreWriter) Start(ctx context.Context, p ui.StartParams) error {
	db, j := newDatabase()
	ts := core.FromTime(Now())
	candidate := core.NewOpen(ts, p.Tags, p.Note)
	req := core.Request{Interval: candidate}
	return withJournalTxn(db, j, func() error {
		resolved, insert, err := core.Validate(rules, db, exclusionProvider(), req, nil)
		if err != nil {
			return err
		}
		if insert {
			return db.AddInterval(resolved, isVerbose())
		}
		return nil
	})
}

func (coreWriter) Stop(ctx context.Context) error {
	db, j := newDatabase()
	return withJournalTxn(db, j, func() error {
		latest, ok, err := core.GetLatestInterval(db)
		if err != nil {
			return err
		}
		if !ok || !latest.IsOpen() {
			return fmt.Errorf("no running entry to stop")
		}
		ts := core.FromTime(Now())
		closed := core.New(latest.Start, ts, latest.Tags, latest.Annotation)
		return db.ModifyInterval(latest, closed, isVerbose())
	})
}

func (coreWriter) Note(ctx context.Context, text string) error {
	db, j := newDatabase()
	return withJournalTxn(db, j, func() error {
		latest, ok, err := core.GetLatestInterval(db)
		if err != nil {
			return err
		}
		if !ok || !latest.IsOpen() {
			return fmt.Errorf("no running entry to annotate")
		}
		annotated := core.NewOpen(latest.Start, latest.Tags, text)
		return db.ModifyInterval(latest, annotated, isVerbose())
	})
}

func (coreWriter) Add(ctx context.Context, p ui.AddParams) error {
	db, j := newDatabase()
	candidate := core.New(core.FromTime(p.Start), core.FromTime(p.End), p.Tags, p.Note)
	req := core.Request{Interval: candidate}
	return withJournalTxn(db, j, func() error {
		resolved, insert, err := core.Validate(rules, db, exclusionProvider(), req, nil)
		if err != nil {
			return err
		}
		if insert {
			return db.AddInterval(resolved, isVerbose())
		}
		return nil
	})
}

func (w coreWriter) Switch(ctx context.Context, p ui.SwitchParams) error {
	db, j := newDatabase()
	ts := core.FromTime(Now())
	return withJournalTxn(db, j, func() error {
		latest, ok, err := core.GetLatestInterval(db)
		if err != nil {
			return err
		}
		if ok && latest.IsOpen() {
			if ts <= latest.Start {
				return fmt.Errorf("switch time must be after %s", formatTS(latest.Start))
			}
			closed := core.New(latest.Start, ts, latest.Tags, latest.Annotation)
			if err := db.ModifyInterval(latest, closed, isVerbose()); err != nil {
				return err
			}
		}
		return db.AddInterval(core.NewOpen(ts, p.Tags, p.Note), isVerbose())
	})
}

// coreConfig sources timezone and rounding from viper / existing helpers.
type coreConfig struct{}

func (coreConfig) Timezone() *time.Location {
	tz := viper.GetString("timezone")
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

func (coreConfig) Rounding() ui.RoundingConfig {
	r := getRounding()
	return ui.RoundingConfig{
		Strategy:     r.Strategy,
		QuantumMin:   r.QuantumMin,
		MinimumEntry: r.MinimumEntry,
	}
}
