package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var (
	repToday    bool
	repWeek     bool
	repRange    string
	repDetailed bool
)

type aggVal struct {
	RawMin, RoundedMin int
	entries            []core.Interval
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked time by tag",
	Run: func(cmd *cobra.Command, args []string) {
		from, to := parseRangeFlags(repToday, repWeek, repRange)
		start, end := dayBounds(from, to)

		db, _ := newDatabase()
		tracked, err := core.GetTracked(db, rules, core.AllInRange{Start: start, End: end})
		cobra.CheckErr(err)
		if len(tracked) == 0 {
			fmt.Println("No entries.")
			return
		}

		r := getRounding()
		agg := map[string]*aggVal{}
		totalRaw, totalRounded, considered := 0, 0, 0

		for _, iv := range tracked {
			min := durationMinutes(iv)
			if min <= 0 || iv.IsOpen() {
				continue
			}
			considered++
			rmin := roundMinutes(min, r)
			totalRaw += min
			totalRounded += rmin

			key := strings.Join(iv.Tags, ",")
			if key == "" {
				key = "(untagged)"
			}
			if agg[key] == nil {
				agg[key] = &aggVal{}
			}
			agg[key].RawMin += min
			agg[key].RoundedMin += rmin
			agg[key].entries = append(agg[key].entries, iv)
		}

		fmt.Printf("%sReport Range:%s %s -> %s\n", ansiHeading, ansiReset, from.Format("2006-01-02"), to.Format("2006-01-02"))
		fmt.Printf("Loaded: %d   Considered: %d   Rounding: strategy=%s quantum=%d\n\n",
			len(tracked), considered, r.Strategy, r.QuantumMin)
		if considered == 0 {
			fmt.Println("No finished entries in the selected range.")
			return
		}

		keys := make([]string, 0, len(agg))
		for k := range agg {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := agg[k]
			fmt.Printf("%s=== %s ===%s\n", ansiLabel, k, ansiReset)
			if repDetailed {
				sort.Slice(v.entries, func(i, j int) bool { return v.entries[i].Start < v.entries[j].Start })
				for _, iv := range v.entries {
					min := durationMinutes(iv)
					rmin := roundMinutes(min, r)
					ann := "-"
					if iv.Annotation != "" {
						ann = iv.Annotation
					}
					fmt.Printf(" - %s -> %s  (%s raw -> %s rounded %+dm)  %s\n",
						formatTS(iv.Start), formatTS(iv.End), fmtHHMM(min), fmtHHMM(rmin), rmin-min, ann)
				}
			}
			fmt.Printf("  %sEntries: %d   Raw: %s   Rounded: %s (+%dm)%s\n\n",
				ansiHours, len(v.entries), fmtHHMM(v.RawMin), fmtHHMM(v.RoundedMin), v.RoundedMin-v.RawMin, ansiReset)
		}

		fmt.Printf("TOTAL: %s raw -> %s rounded (+%dm)\n", fmtHHMM(totalRaw), fmtHHMM(totalRounded), totalRounded-totalRaw)
	},
}

func init() {
	reportCmd.Flags().BoolVar(&repToday, "today", false, "today only")
	reportCmd.Flags().BoolVar(&repWeek, "week", false, "this week (Mon..Sun)")
	reportCmd.Flags().StringVar(&repRange, "range", "", "custom range A..B")
	reportCmd.Flags().BoolVar(&repDetailed, "detailed", false, "detailed report including per-entry annotations")
}
