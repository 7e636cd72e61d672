// Package cmd provides the CLI commands for sitemetrics.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"
	// Commit is set at build time via ldflags.
	Commit = "none"
	// Date is set at build time via ldflags.
	Date = "unknown"
)

var (
	cfgFile    string
	sourceFlag string
	noColor    bool
	logLevel   string
)

// newRootCmd builds the command tree. Building it fresh resets every flag
// to its default.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sitemetrics",
		Short: "Construction portfolio health and variance metrics",
		Long: `sitemetrics derives health scores, cost variances and execution grades
for a portfolio of construction projects.

Project data comes from a JSON or CSV file, a SQLite store created by
"sitemetrics import", or the built-in sample portfolio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .sitemetrics/config.yaml or sitemetrics.yaml)")
	root.PersistentFlags().StringVar(&sourceFlag, "source", "", "data source: sample:, sqlite:<path>, or a .json/.csv file")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	root.AddCommand(
		newVersionCmd(),
		newStatusCmd(),
		newProjectCmd(),
		newHealthCmd(),
		newExportCmd(),
		newImportCmd(),
		newServeCmd(),
		newInitCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the CLI. This is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}
