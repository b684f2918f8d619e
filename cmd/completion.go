package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/hlindberg/tt/internal/core"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	startCmd.ValidArgsFunction = tagValidArgs
	switchCmd.ValidArgsFunction = tagValidArgs
	addCmd.ValidArgsFunction = tagValidArgs
	tagCmd.ValidArgsFunction = tagValidArgs
	untagCmd.ValidArgsFunction = tagValidArgs
}

// tagValidArgs offers fuzzy-ranked completion over every tag that has ever
// been recorded, so commands taking tag arguments can complete against a
// user's own vocabulary instead of a fixed taxonomy.
func tagValidArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	known := knownTags()
	if toComplete == "" {
		sort.Strings(known)
		return known, cobra.ShellCompDirectiveNoFileComp
	}
	matches := fuzzy.Find(toComplete, known)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// knownTags scans every recorded interval for its tag set. Best-effort: a
// database that can't be opened yields no suggestions rather than an error,
// since shell completion must never hard-fail.
func knownTags() []string {
	db, _ := newDatabase()
	tracked, err := core.GetTracked(db, rules, nil)
	if err != nil {
		return nil
	}
	seen := map[string]struct{}{}
	for _, iv := range tracked {
		for _, t := range iv.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	return out
}
