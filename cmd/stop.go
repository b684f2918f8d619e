package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var stopAt string

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the current running entry",
	Run: func(cmd *cobra.Command, args []string) {
		db, j := newDatabase()

		ts := core.FromTime(Now())
		if stopAt != "" {
			if st, _, cons, err := ParseFlexibleRange([]string{stopAt}, Now()); err == nil && cons > 0 && !st.IsZero() {
				ts = core.FromTime(st)
			} else {
				cobra.CheckErr(fmt.Errorf("cannot parse --at %q", stopAt))
			}
		}

		err := withJournalTxn(db, j, func() error {
			latest, ok, err := core.GetLatestInterval(db)
			if err != nil {
				return err
			}
			if !ok || !latest.IsOpen() {
				return fmt.Errorf("no running entry to stop")
			}
			if ts <= latest.Start {
				return fmt.Errorf("stop time must be after %s", formatTS(latest.Start))
			}
			closed := core.New(latest.Start, ts, latest.Tags, latest.Annotation)
			return db.ModifyInterval(latest, closed, isVerbose())
		})
		cobra.CheckErr(err)
		fmt.Printf("Stopped at %s\n", ts.String())
	},
}

func init() {
	stopCmd.Flags().StringVar(&stopAt, "at", "", "custom stop time (accepts relative expressions like 'now-5m')")
}
