package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var (
	resizeDuration string
	resizeAdjust   bool
)

var resizeCmd = &cobra.Command{
	Use:   "resize <id...>",
	Short: "Change a closed entry's duration, keeping its start fixed",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ids := mustParseIDs(args)
		dur, err := time.ParseDuration(resizeDuration)
		cobra.CheckErr(err)

		db, j := newDatabase()
		err = withJournalTxn(db, j, func() error {
			tracked, err := core.GetTracked(db, rules, core.AllWithIds{Ids: ids})
			if err != nil {
				return err
			}
			found := map[int]bool{}
			for _, iv := range tracked {
				found[iv.ID] = true
			}
			for _, id := range ids {
				if !found[id] {
					return fmt.Errorf("id @%d does not correspond to any tracked entry", id)
				}
			}
			for _, iv := range tracked {
				if iv.IsOpen() {
					return fmt.Errorf("cannot resize open entry @%d", iv.ID)
				}
				resized := core.New(iv.Start, iv.Start+core.Instant(dur/time.Second), iv.Tags, iv.Annotation)

				// The common case resizes in place with no overlap created:
				// a single journal update op, matching spec.md's resize scenario.
				others, err := core.GetTracked(db, rules, core.AllInRange{Start: resized.Start, End: resized.End})
				if err != nil {
					return err
				}
				overlapsOther := false
				for _, o := range others {
					if o.ID != iv.ID {
						overlapsOther = true
						break
					}
				}

				if !overlapsOther {
					if err := db.ModifyInterval(iv, resized, isVerbose()); err != nil {
						return err
					}
				} else {
					if !resizeAdjust {
						return &core.OverlapError{Message: fmt.Sprintf("resizing @%d would overlap other entries; pass --adjust to resolve them", iv.ID)}
					}
					if err := db.DeleteInterval(iv); err != nil {
						return err
					}
					resolved, insert, err := core.Validate(rules, db, exclusionProvider(), core.Request{Interval: resized, Adjust: true}, cmd.OutOrStdout())
					if err != nil {
						return err
					}
					if insert {
						if err := db.AddInterval(resolved, isVerbose()); err != nil {
							return err
						}
					}
				}
				if isVerbose() {
					fmt.Fprintf(cmd.OutOrStdout(), "Resized @%d to %s\n", iv.ID, dur)
				}
			}
			return nil
		})
		cobra.CheckErr(err)
	},
}

func init() {
	resizeCmd.Flags().StringVar(&resizeDuration, "duration", "", "new duration, e.g. 1h30m")
	resizeCmd.Flags().BoolVar(&resizeAdjust, "adjust", false, "resolve overlaps created by the resize via :adjust semantics")
	_ = resizeCmd.MarkFlagRequired("duration")
}
