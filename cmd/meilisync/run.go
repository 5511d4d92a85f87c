package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/orchestrator"
	"github.com/meilisync/connector/internal/telemetry"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a configuration and run the reconciliation engine until shutdown",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath)
		if err != nil {
			return err
		}

		logger := telemetry.NewLogger()
		providers, err := telemetry.Setup(cmd.Context())
		if err != nil {
			return err
		}
		defer providers.Shutdown(context.Background())

		return orchestrator.New(cfg, logger).Run(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to the TOML configuration file")
	runCmd.MarkFlagRequired("config")
}
