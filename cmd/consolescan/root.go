// Package main provides the entry point for the consolescan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for consolescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consolescan",
		Short: "Crawl a sitemap and capture browser console errors",
		Long: `consolescan resolves a site's sitemap tree (expanding sitemap indexes
recursively) into a set of page URLs, visits each page in a headless
browser, and records severe console diagnostics into one log file per
URL.

The seed sitemap URL can be given as an argument to "scan" or entered
interactively when omitted.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
