package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var (
	switchTags []string
	switchNote string
)

var switchCmd = &cobra.Command{
	Use:   "switch [tag...]",
	Short: "Stop the current entry and immediately start a new one",
	Run: func(cmd *cobra.Command, args []string) {
		db, j := newDatabase()
		ts := core.FromTime(Now())
		tags := append(append([]string{}, switchTags...), args...)

		err := withJournalTxn(db, j, func() error {
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
			return db.AddInterval(core.NewOpen(ts, tags, switchNote), isVerbose())
		})
		cobra.CheckErr(err)
		fmt.Printf("Switched to #%s at %s\n", joinTags(core.NewOpen(0, tags, "").Tags), formatTS(ts))
	},
}

func init() {
	switchCmd.Flags().StringSliceVarP(&switchTags, "tag", "t", nil, "tag(s) for the new entry")
	switchCmd.Flags().StringVarP(&switchNote, "note", "n", "", "annotation for the new entry")
}
