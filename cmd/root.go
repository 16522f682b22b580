// Package cmd defines and implements the CLI commands for the bipwatch
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	devLogging bool
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bipwatch",
		Short: "Scrapes Polish municipal disclosure bulletins (BIP).",
		Long: `bipwatch collects fresh notices from configured BIP sites.
Each site is scraped with an adaptive cascade of listing strategies,
entries are enriched with the text of linked PDF documents, and the
result is delivered to a webhook or written to a local snapshot.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bipwatch.yaml)")
	cmd.PersistentFlags().BoolVar(&devLogging, "dev-logging", false, "force colored console logging")

	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
