package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"factoriowiki/internal/storage"
)

func init() {
	historyCmd.Flags().Int("limit", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the latest extraction runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		db, err := storage.Open(cfg.DBPath())
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(limit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "When", "Kind", "Item", "Status", "Materials", "Warnings", "ms", "Trace", "Error"})
		for _, r := range runs {
			errText := ""
			if r.Error != nil {
				errText = *r.Error
			}
			t.AppendRow(table.Row{r.ID, r.CreatedAt, r.Kind, r.ItemCode, r.Status, r.Materials, r.Warnings, r.DurationMs, shortTrace(r.TraceID), errText})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if last, err := db.GetMetadata(storage.MetaLastBootstrap); err == nil && last != nil {
			count, _ := db.GetMetadata(storage.MetaLastBootstrapCount)
			n := "?"
			if count != nil {
				n = *count
			}
			fmt.Fprintf(cmd.OutOrStdout(), "last bootstrap: %s (%s items)\n", *last, n)
		}
		return nil
	},
}

func shortTrace(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
