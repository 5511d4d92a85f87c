package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/dbadapter"
)

var (
	genDatabaseURL    string
	genMeilisearchURL string
	genMeilisearchKey string
	genOutput         string
	genPollInterval   int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Introspect a database and write a starter configuration",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindEnv(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		adapter, err := dbadapter.Open(ctx, genDatabaseURL, config.DefaultConnectionPoolSize)
		if err != nil {
			return err
		}
		defer adapter.Close()

		names, err := adapter.ListTables(ctx)
		if err != nil {
			return err
		}

		var tables []config.TableConfig
		for _, name := range names {
			pk, err := adapter.PrimaryKeyOf(ctx, name)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(
					fmt.Sprintf("skipping table %q: no primary key", name)))
				continue
			}
			tables = append(tables, config.TableConfig{Name: name, PrimaryKey: pk})
		}
		if len(tables) == 0 {
			return fmt.Errorf("no tables with a usable primary key were found")
		}

		var apiKey *string
		if genMeilisearchKey != "" {
			apiKey = &genMeilisearchKey
		}
		cfg := &config.Config{
			Meilisearch: config.MeilisearchConfig{Host: genMeilisearchURL, APIKey: apiKey},
			Database: config.DatabaseConfig{
				Type:                dialectOf(genDatabaseURL),
				ConnectionString:    genDatabaseURL,
				PollIntervalSeconds: genPollInterval,
				Tables:              tables,
			},
		}
		if err := cfg.Save(genOutput); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(
			fmt.Sprintf("wrote configuration for %d table(s) to %s", len(tables), genOutput)))
		return nil
	},
}

func dialectOf(connectionURL string) config.DatabaseType {
	switch {
	case len(connectionURL) >= 7 && connectionURL[:7] == "sqlite:":
		return config.SQLite
	case len(connectionURL) >= 9 && connectionURL[:9] == "postgres:":
		return config.Postgres
	case len(connectionURL) >= 6 && connectionURL[:6] == "mysql:":
		return config.MySQL
	default:
		return ""
	}
}

func init() {
	generateCmd.Flags().StringVar(&genDatabaseURL, "database-url", "", "source database URL (sqlite://, postgres://, mysql://)")
	generateCmd.Flags().StringVar(&genMeilisearchURL, "meilisearch-host", "", "Meilisearch host URL")
	generateCmd.Flags().StringVar(&genMeilisearchKey, "meilisearch-key", "", "Meilisearch API key")
	generateCmd.Flags().StringVar(&genOutput, "output", "", "path to write the generated TOML configuration")
	generateCmd.Flags().IntVar(&genPollInterval, "poll-interval", config.DefaultPollIntervalSeconds, "poll interval in seconds")
	generateCmd.MarkFlagRequired("database-url")
	generateCmd.MarkFlagRequired("meilisearch-host")
	generateCmd.MarkFlagRequired("output")
}
