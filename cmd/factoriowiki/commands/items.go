package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"factoriowiki/internal"
	"factoriowiki/internal/extract"
	"factoriowiki/internal/pipeline"
)

func init() {
	itemsBootstrapCmd.Flags().String("html", "", "read the listing from a saved HTML file")
	rootCmd.AddCommand(itemsBootstrapCmd, itemsAddCmd, itemsListCmd, itemsFindCmd)
}

var itemsBootstrapCmd = &cobra.Command{
	Use:   "items:bootstrap",
	Short: "Rebuild the registry CSV from the wiki's materials listing page.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		htmlFile, _ := cmd.Flags().GetString("html")
		listingURL, err := cfg.MaterialsURL()
		if err != nil {
			return err
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

		items, err := pipeline.NewBootstrapper(reg, fetcher, extract.HTML{}, ledger, cfg.WikiBaseURL).Bootstrap(cmd.Context(), listingURL, htmlFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d items to %s\n", len(items), reg.Path())
		return nil
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "items:add NAME CODE [URL]",
	Short: "Append one item to the registry. The URL is derived from the code when omitted.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		id := internal.Identity{NameJA: args[0], Code: args[1]}
		if len(args) == 3 {
			id.URL = args[2]
		} else {
			id.URL = reg.URLFor(id, internal.LocaleJA)
		}
		if err := reg.Add(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) %s\n", id.NameJA, id.Code, id.URL)
		return nil
	},
}

var itemsListCmd = &cobra.Command{
	Use:   "items:list",
	Short: "Print the registry.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"#", "Name", "Code", "URL"})
		for i, id := range reg.Items() {
			t.AppendRow(table.Row{i + 1, id.Name(locale()), id.Code, reg.URLFor(id, locale())})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

var itemsFindCmd = &cobra.Command{
	Use:   "items:find NAME_OR_CODE",
	Short: "Resolve an item's page URL by name, then by code.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		id, err := reg.Lookup(args[0], locale())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", id.Name(locale()), id.Code, reg.URLFor(id, locale()))
		return nil
	},
}
