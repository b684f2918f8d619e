package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var (
	startTags  []string
	startNote  string
	startAt    string
	startFill  bool
	startClose bool
)

var startCmd = &cobra.Command{
	Use:   "start [tag...]",
	Short: "Start tracking time (creates a running entry)",
	Run: func(cmd *cobra.Command, args []string) {
		db, j := newDatabase()

		ts := core.FromTime(Now())
		if startAt != "" {
			if st, _, cons, err := ParseFlexibleRange([]string{startAt}, Now()); err == nil && cons > 0 && !st.IsZero() {
				ts = core.FromTime(st)
			} else {
				cobra.CheckErr(fmt.Errorf("cannot parse --at %q", startAt))
			}
		}

		tags := append(append([]string{}, startTags...), args...)
		candidate := core.NewOpen(ts, tags, startNote)
		req := core.Request{Interval: candidate, Fill: startFill, Adjust: startClose}

		var resolved core.Interval
		var insert bool
		err := withJournalTxn(db, j, func() error {
			var verr error
			resolved, insert, verr = core.Validate(rules, db, exclusionProvider(), req, cmd.OutOrStdout())
			if verr != nil {
				return verr
			}
			if insert {
				return db.AddInterval(resolved, isVerbose())
			}
			return nil
		})
		cobra.CheckErr(err)

		if insert {
			fmt.Printf("Started %s #%s\n", formatTS(resolved.Start), joinTags(resolved.Tags))
		} else {
			fmt.Println("Already tracking the same tags; nothing to do.")
		}
	},
}

func init() {
	startCmd.Flags().StringSliceVarP(&startTags, "tag", "t", nil, "tag(s) for the new entry")
	startCmd.Flags().StringVarP(&startNote, "note", "n", "", "annotation for this entry")
	startCmd.Flags().StringVar(&startAt, "at", "", "custom start time (accepts relative expressions like 'now-30m')")
	startCmd.Flags().BoolVar(&startFill, "fill", false, "extend the start backwards to abut the previous entry")
	startCmd.Flags().BoolVar(&startClose, "adjust", false, "resolve overlap with the currently running entry via :adjust semantics")
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += " #"
		}
		out += t
	}
	return out
}
