package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/esimov/pixelate/config"
	"github.com/esimov/pixelate/utils"
)

var configOut string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or save the effective configuration",
	Long: `Print the configuration resulting from the configuration file and the
command line flags, or save it with --write so it can be reused with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVarP(&configOut, "write", "w", "", "Save the configuration to this file")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	if _, err := config.Config.Pixelate.Engine(); err != nil {
		return err
	}
	if configOut == "" {
		return config.Encode(cmd.OutOrStdout())
	}

	if err := config.WriteConfig(configOut); err != nil {
		return fmt.Errorf("unable to save the configuration: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "The configuration has been saved as: %s\n",
		utils.DecorateText(filepath.Base(configOut), utils.SuccessMessage),
	)
	return nil
}
