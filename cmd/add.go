package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var (
	addTags   []string
	addNote   string
	addFill   bool
	addAdjust bool
)

var addCmd = &cobra.Command{
	Use:   "add <range> [tag...]",
	Short: "Record a past, already-closed interval (retro entry)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, en, consumed, err := ParseFlexibleRange(args, Now())
		cobra.CheckErr(err)
		if en.IsZero() {
			cobra.CheckErr(fmt.Errorf("an end time is required; got only a start from %q", args[:consumed]))
		}
		if !en.After(st) {
			cobra.CheckErr(fmt.Errorf("end time must be after start time"))
		}

		tags := append(append([]string{}, addTags...), args[consumed:]...)
		candidate := core.New(core.FromTime(st), core.FromTime(en), tags, addNote)
		req := core.Request{Interval: candidate, Fill: addFill, Adjust: addAdjust}

		db, j := newDatabase()
		var resolved core.Interval
		var insert bool
		err = withJournalTxn(db, j, func() error {
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
			fmt.Printf("Added %s - %s #%s\n", formatTS(resolved.Start), formatTS(resolved.End), joinTags(resolved.Tags))
		} else {
			fmt.Println("Entry already recorded with the same tags; nothing to do.")
		}
	},
}

func init() {
	addCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "tag(s) for the entry")
	addCmd.Flags().StringVarP(&addNote, "note", "n", "", "annotation for the entry")
	addCmd.Flags().BoolVar(&addFill, "fill", false, "extend to abut neighboring entries where possible")
	addCmd.Flags().BoolVar(&addAdjust, "adjust", false, "resolve overlaps with existing entries via :adjust semantics")
}
