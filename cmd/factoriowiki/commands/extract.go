package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"factoriowiki/internal"
	"factoriowiki/internal/extract"
	"factoriowiki/internal/pipeline"
	"factoriowiki/internal/storage"
)

func init() {
	rootCmd.AddCommand(
		extractCmd(internal.RunRecipe, "recipe NAME_OR_CODE", "Extract an item's recipe into its JSON record."),
		extractCmd(internal.RunVolume, "volume NAME_OR_CODE", "Extract an item's rocket capacity and volume into its JSON record."),
		extractCmd(internal.RunFacts, "facts NAME_OR_CODE", "Extract recipe and rocket capacity from one fetch."),
	)
}

func extractCmd(kind internal.RunKind, use, short string) *cobra.Command {
	var (
		depth    int
		htmlFile string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 0 {
				return fmt.Errorf("%w: --depth must not be negative", errUsage)
			}
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			fetcher, err := newFetcher()
			if err != nil {
				return err
			}
			ledger, db := openLedger()
			defer closeDB(db)

			svc := pipeline.NewService(reg, storage.NewItemStore(cfg.JSONPath()), fetcher, extract.HTML{}, ledger)
			results, err := svc.Run(cmd.Context(), kind, args[0], pipeline.Options{
				Locale:   locale(),
				Mode:     mode(),
				Depth:    depth,
				HTMLFile: htmlFile,
			})
			if err != nil {
				return err
			}

			top := results[0]
			blob, err := storage.Render(top.Record)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, string(blob))
			fmt.Fprintf(out, "saved %s\n", top.Path)
			if len(results) > 1 {
				fmt.Fprintf(out, "also updated %d material(s)\n", len(results)-1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "follow registered materials this many levels deep")
	cmd.Flags().StringVar(&htmlFile, "html", "", "read the page from a saved HTML file (\"-\" for stdin)")
	return cmd
}
