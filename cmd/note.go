package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var noteCmd = &cobra.Command{
	Use:   "note <text>",
	Short: "Attach an annotation to the current running entry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, j := newDatabase()
		err := withJournalTxn(db, j, func() error {
			latest, ok, err := core.GetLatestInterval(db)
			if err != nil {
				return err
			}
			if !ok || !latest.IsOpen() {
				return fmt.Errorf("no running entry to annotate")
			}
			annotated := core.NewOpen(latest.Start, latest.Tags, args[0])
			return db.ModifyInterval(latest, annotated, isVerbose())
		})
		cobra.CheckErr(err)
		fmt.Println("Added annotation.")
	},
}
