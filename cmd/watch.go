package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
	"github.com/hlindberg/tt/internal/tui"
)

var watchRange string

// watchCmd tails tt's tracked entries to the terminal as the data directory
// changes on disk, reusing the same fsnotify-backed watcher the TUI uses so
// an external writer (another `tt` invocation, a sync tool) is reflected
// without the user having to re-run `tt ls` by hand.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail tracked entries as the database changes on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		root := dataRoot()
		w := tui.NewFSNotifyJournalWatch(dataSubdir(root), 0)

		printOnce := func() error {
			from, to := parseRangeFlags(false, false, watchRange)
			start, end := dayBounds(from, to)
			db, _ := newDatabase()
			tracked, err := core.GetTracked(db, rules, core.AllInRange{Start: start, End: end})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "--- %s ---\n", time.Now().Format("15:04:05"))
			if len(tracked) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries.")
				return nil
			}
			for _, iv := range tracked {
				endStr := "running"
				if !iv.IsOpen() {
					endStr = iv.End.Time().Local().Format("15:04")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "@%-4d %s-%s  %-8s  #%s\n",
					iv.ID, iv.Start.Time().Local().Format("15:04"), endStr,
					fmtHHMM(durationMinutes(iv)), joinTags(iv.Tags))
			}
			return nil
		}

		if err := printOnce(); err != nil {
			return err
		}

		changes := w.Changes(ctx)
		for {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
				if err := printOnce(); err != nil {
					return err
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchRange, "range", "", "custom range A..B (default: today)")
	rootCmd.AddCommand(watchCmd)
}

// dataSubdir returns root's "data" subdirectory, the one that holds the
// monthly Datafiles the watcher should observe.
func dataSubdir(root string) string {
	return root + string(os.PathSeparator) + "data"
}
