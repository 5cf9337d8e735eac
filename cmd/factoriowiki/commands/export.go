package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"factoriowiki/internal/pipeline"
	"factoriowiki/internal/storage"
)

func init() {
	exportCmd.Flags().String("out", "", "output xlsx path (default <output_dir>/factorio_items.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export:xlsx",
	Short: "Write the registry joined with stored facts to an xlsx workbook.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(cfg.OutputDir, "factorio_items.xlsx")
		}
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		rows, err := pipeline.BuildExportRows(reg, storage.NewItemStore(cfg.JSONPath()), locale())
		if err != nil {
			return err
		}
		if err := pipeline.ExportRowsToXLSX(rows, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", len(rows), out)
		return nil
	},
}
