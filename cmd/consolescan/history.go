package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/consolescan/consolescan/internal/config"
	"github.com/consolescan/consolescan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List crawl runs recorded in the history database",
		Long: `History lists the crawl runs stored with scan --db, most recent
first. Use --run to print the per-page results of a single run.

Examples:
  # List all recorded runs
  consolescan history

  # List runs for one sitemap
  consolescan history --sitemap https://example.com/sitemap.xml

  # Show the page results of run 3
  consolescan history --run 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("sitemap", "", "Only list runs for this sitemap URL")
	cmd.Flags().Int64("run", 0, "Print the per-page results of the given run ID")
	cmd.Flags().String("db-dir", "", "Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no crawl history found in %s: %w", dbDir, err)
	}
	defer db.Close()

	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return err
	}
	if runID > 0 {
		return printPageResults(cmd, db, runID)
	}

	sitemapURL, err := cmd.Flags().GetString("sitemap")
	if err != nil {
		return err
	}
	return printRuns(cmd, db, sitemapURL)
}

// printRuns lists stored runs, most recent first.
func printRuns(cmd *cobra.Command, db *database.CrawlDB, sitemapURL string) error {
	runs, err := db.ListRuns(cmd.Context(), sitemapURL)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s  %-19s  %6s  %5s  %5s  %s\n",
		"ID", "STARTED", "PAGES", "DIAG", "LOGS", "SITEMAP")
	for _, run := range runs {
		fmt.Fprintf(out, "%-4d  %-19s  %6d  %5d  %5d  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.PagesCrawled,
			run.DiagnosticsFound,
			run.ArtifactsWritten,
			run.SitemapURL,
		)
	}
	return nil
}

// printPageResults prints the page-level outcome of one run.
func printPageResults(cmd *cobra.Command, db *database.CrawlDB, runID int64) error {
	results, err := db.GetPageResults(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if len(results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No page results for run %d.\n", runID)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, result := range results {
		switch {
		case result.Failed():
			fmt.Fprintf(out, "[%s] %s: %s\n", result.Failure, result.URL, result.FailureMessage)
		case len(result.Lines) > 0:
			fmt.Fprintf(out, "[%d] %s\n", len(result.Lines), result.URL)
		default:
			fmt.Fprintf(out, "[clean] %s\n", result.URL)
		}
		if result.ArtifactPath != "" {
			fmt.Fprintf(out, "       -> %s\n", result.ArtifactPath)
		}
	}
	return nil
}
