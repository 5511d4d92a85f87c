// Package main provides the meilisync CLI: run the reconciliation engine,
// generate a starter configuration from a database, or validate a
// configuration document.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	_ "github.com/meilisync/connector/internal/dbadapter/mysql"
	_ "github.com/meilisync/connector/internal/dbadapter/postgres"
	_ "github.com/meilisync/connector/internal/dbadapter/sqlite"
)

var (
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"})
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"})
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
)

func isTTY() bool {
	return termenv.NewOutput(os.Stdout).Profile != termenv.Ascii
}

func renderErr(msg string) string {
	if !isTTY() {
		return "Error: " + msg
	}
	return failStyle.Render("Error: " + msg)
}

var rootCmd = &cobra.Command{
	Use:           "meilisync",
	Short:         "Keep a search index synchronized with a relational database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// bindEnv lets every flag on cmd be overridden by a MEILISYNC_<FLAG_NAME>
// environment variable, the same env-override convention the teacher
// applies to its own yaml config values via viper.
func bindEnv(cmd *cobra.Command) {
	v := viper.New()
	v.SetEnvPrefix("MEILISYNC")
	v.AutomaticEnv()
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if val := v.GetString(key); val != "" {
			cmd.Flags().Set(f.Name, val)
		}
	})
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderErr(err.Error()))
		os.Exit(1)
	}
}
