// Package cmd provides CLI commands for mexp2ledger.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mexp2ledger",
	Short: "Convert a MyExpenses backup to ledger text",
	Long: `mexp2ledger converts a MyExpenses backup database into a
deterministic plain-text ledger on standard output.

It supports:
- Split transactions merged into balanced multi-posting entries
- Transfer pairs reduced to one logical transaction
- Exclusion lists keyed by stable reference hashes
- Optional YAML remapping of account labels

Example:
  mexp2ledger export BACKUP > ledger.dat
  mexp2ledger accounts --active BACKUP`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		if quiet {
			logLevel = slog.LevelError
		}

		// Diagnostics go to stderr; the ledger itself owns stdout.
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "inhibit warnings")

	// Add subcommands
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(payeesCmd)
	rootCmd.AddCommand(statsCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	return cfgFile
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
