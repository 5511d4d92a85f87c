package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meilisync/connector/internal/config"
)

var validateConfigPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate a configuration file without running",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(validateConfigPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("configuration is valid"))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "", "path to the TOML configuration file")
	validateCmd.MarkFlagRequired("config")
}
