// Package commands implements the navdemo CLI.
package commands

import (
	"fmt"

	"github.com/ib-77/navload/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	// Global flags.
	cfgFile  string
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "navdemo",
	Short: "navdemo - navigation-scoped data loading playground",
	Long: `navdemo drives a small storefront through navload: every navigation
loads the view's loaders once, commits their data when the navigation is
accepted, follows redirects, and can hand a server render to a client through
a TOML snapshot.

Environment variables with the NAVDEMO_ prefix override the config file,
for example NAVDEMO_DEMO_LATENCY=200ms.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(hydrateCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if err := InitLogger(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "navdemo %s (%s)\n", Version, Commit)
	},
}
