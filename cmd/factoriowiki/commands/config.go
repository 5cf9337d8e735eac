package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"factoriowiki/internal/config"
)

func init() {
	configInitCmd.Flags().String("file", config.DefaultFile, "where to write the config")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	rootCmd.AddCommand(configInitCmd, configShowCmd)
}

var configInitCmd = &cobra.Command{
	Use:         "config:init",
	Short:       "Write a config file with the default settings.",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "config:show",
	Short: "Print the resolved settings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		blob, err := cfg.JSON()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(blob))
		return nil
	},
}
