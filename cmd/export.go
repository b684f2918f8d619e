package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hlindberg/tt/internal/core"
)

var (
	exportToday bool
	exportWeek  bool
	exportRange string
)

// yamlEntry is the serialization shape written by `tt export`: a flattened,
// human-editable view of an interval, distinct from the storage line
// grammar core.Interval.Line produces.
type yamlEntry struct {
	Start      string   `yaml:"start"`
	End        string   `yaml:"end,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Annotation string   `yaml:"annotation,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries for a period as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		from, to := parseRangeFlags(exportToday, exportWeek, exportRange)
		start, end := dayBounds(from, to)

		db, _ := newDatabase()
		tracked, err := core.GetTracked(db, rules, core.AllInRange{Start: start, End: end})
		cobra.CheckErr(err)

		out := make([]yamlEntry, 0, len(tracked))
		for _, iv := range tracked {
			e := yamlEntry{Start: iv.Start.String(), Tags: iv.Tags, Annotation: iv.Annotation}
			if !iv.IsOpen() {
				e.End = iv.End.String()
			}
			out = append(out, e)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		cobra.CheckErr(enc.Encode(out))
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportToday, "today", false, "today only")
	exportCmd.Flags().BoolVar(&exportWeek, "week", false, "this week (Mon..Sun)")
	exportCmd.Flags().StringVar(&exportRange, "range", "", "custom range A..B")
}
