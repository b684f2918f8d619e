package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var tagCmd = &cobra.Command{
	Use:   "tag <id> <tag...>",
	Short: "Add tag(s) to an existing entry",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ids, newTags := splitIDsAndTags(args)
		mutateTags(cmd, ids, func(iv core.Interval) core.Interval {
			out := iv
			for _, t := range newTags {
				out = out.Tag(t)
			}
			return out
		})
	},
}

var untagCmd = &cobra.Command{
	Use:   "untag <id> <tag...>",
	Short: "Remove tag(s) from an existing entry",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ids, remove := splitIDsAndTags(args)
		mutateTags(cmd, ids, func(iv core.Interval) core.Interval {
			out := iv
			for _, t := range remove {
				out = out.Untag(t)
			}
			return out
		})
	},
}

// splitIDsAndTags takes the first positional argument as the one interval ID
// and every remaining argument as a tag (cobra strips a literal "--" before
// the args arrive here). Only one ID is taken: a second "@N" argument is
// treated as a tag.
func splitIDsAndTags(args []string) ([]int, []string) {
	if len(args) < 2 {
		cobra.CheckErr(fmt.Errorf("usage: <id> <tag...>"))
	}
	return mustParseIDs(args[:1]), args[1:]
}

func mutateTags(cmd *cobra.Command, ids []int, transform func(core.Interval) core.Interval) {
	db, j := newDatabase()
	err := withJournalTxn(db, j, func() error {
		tracked, err := core.GetTracked(db, rules, core.AllWithIds{Ids: ids})
		if err != nil {
			return err
		}
		for _, before := range tracked {
			after := transform(before)
			if after.Equal(before) {
				continue
			}
			if err := db.ModifyInterval(before, after, isVerbose()); err != nil {
				return err
			}
		}
		return nil
	})
	cobra.CheckErr(err)
}
