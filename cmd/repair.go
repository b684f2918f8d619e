package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Recover from a crash that left the journal mid-transaction",
	Run: func(cmd *cobra.Command, args []string) {
		db, j := newDatabase()
		cobra.CheckErr(j.Repair(db))
		cobra.CheckErr(db.Commit())
		fmt.Println("Journal repaired; database is consistent.")
	},
}
