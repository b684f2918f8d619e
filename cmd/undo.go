package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the most recent committed transaction",
	Run: func(cmd *cobra.Command, args []string) {
		db, j := newDatabase()
		checkJournalHealth(j)
		cobra.CheckErr(j.Undo(db))
		cobra.CheckErr(db.Commit())
		fmt.Println("Undone.")
	},
}
