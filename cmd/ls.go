package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var (
	lsToday bool
	lsRange string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List entries for a period (default today)",
	Run: func(cmd *cobra.Command, args []string) {
		from, to := parseRangeFlags(lsToday, false, lsRange)
		start, end := dayBounds(from, to)

		db, _ := newDatabase()
		tracked, err := core.GetTracked(db, rules, core.AllInRange{Start: start, End: end})
		cobra.CheckErr(err)

		if len(tracked) == 0 {
			fmt.Println("No entries.")
			return
		}
		fmt.Printf("Range: %s..%s\n\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
		for _, iv := range tracked {
			endStr := "running"
			if !iv.IsOpen() {
				endStr = iv.End.Time().Local().Format("15:04")
			}
			fmt.Printf("@%-4d %s  %s-%s  %-8s  #%s\n",
				iv.ID, iv.Start.Time().Local().Format("2006-01-02"), iv.Start.Time().Local().Format("15:04"),
				endStr, fmtHHMM(durationMinutes(iv)), joinTags(iv.Tags))
			if iv.Annotation != "" {
				fmt.Printf("      %s\n", iv.Annotation)
			}
		}
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsToday, "today", false, "today only")
	lsCmd.Flags().StringVar(&lsRange, "range", "", "custom range A..B")
}
