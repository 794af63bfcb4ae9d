package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/consolescan/consolescan/internal/browser"
	"github.com/consolescan/consolescan/internal/config"
	"github.com/consolescan/consolescan/internal/crawl"
	"github.com/consolescan/consolescan/internal/database"
	consolelog "github.com/consolescan/consolescan/internal/log"
	"github.com/consolescan/consolescan/internal/model"
	"github.com/consolescan/consolescan/internal/report"
	"github.com/consolescan/consolescan/internal/sitemap"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [sitemap-url]",
		Short: "Resolve a sitemap and record console errors for every page",
		Long: `Scan resolves the sitemap tree rooted at the given URL (expanding
sitemap indexes recursively into a deduplicated URL set), visits each
page in a headless browser, and writes one log file per URL containing
the severe console diagnostics captured during load.

When no sitemap URL is given, scan prompts for one interactively.

Examples:
  # Crawl a sitemap and write logs to ./console_errors
  consolescan scan https://example.com/sitemap.xml

  # Capture warnings too, ignoring favicon noise
  consolescan scan --severity WARNING --filter favicon https://example.com/sitemap.xml

  # Write a Markdown run summary next to the logs
  consolescan scan -m --summary-file console_errors/summary.md https://example.com/sitemap.xml

Configuration file (.consolescan) example:
  output_dir: console_errors
  crawl_delay: 2s
  filters:
    - favicon
    - third-party-ad.js
  browser:
    log_level: WARNING
    window_size: "1366,768"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	// Output flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory for per-URL log files")
	cmd.Flags().Bool("create-empty-logs", false,
		"Write a log file even for pages with zero diagnostics")

	// Crawl behavior flags
	cmd.Flags().Duration("crawl-delay", config.DefaultCrawlDelay,
		"Pause after each navigation before reading diagnostics (0 disables)")
	cmd.Flags().StringP("severity", "s", model.SeveritySevere.String(),
		"Minimum console level captured (ALL, INFO, WARNING, SEVERE)")
	cmd.Flags().StringSliceP("filter", "f", nil,
		"Case-insensitive substrings; matching diagnostics are excluded")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .consolescan in current or home directory)")

	// Summary flags
	cmd.Flags().BoolP("markdown", "m", false,
		"Render the run summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().BoolP("json", "j", false,
		"Render the run summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().String("summary-file", "",
		"Also write the run summary to this file")

	// History flags
	cmd.Flags().Bool("db", false,
		"Record the run in the crawl history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// The interactive prompt is the fallback when no sitemap URL was
	// given on the command line.
	if cfg.SitemapURL == "" {
		cfg.SitemapURL, err = promptSitemapURL(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("failed to read sitemap URL: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := consolelog.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cfg, logger)
}

// promptSitemapURL reads the seed sitemap URL from the interactive
// prompt. Validation happens in Config.Validate, so an empty or
// schemeless answer produces the same clean error as a bad argument.
func promptSitemapURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Sitemap URL: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the optional config
// file, and command flags, in that precedence order. Flags only
// override when explicitly set, so a config file value survives the
// flag's default.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	configPathFlag, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise a missing file just means defaults.
	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("create-empty-logs") {
		if cfg.CreateEmptyArtifacts, err = flags.GetBool("create-empty-logs"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("crawl-delay") {
		if cfg.CrawlDelay, err = flags.GetDuration("crawl-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("severity") {
		raw, err := flags.GetString("severity")
		if err != nil {
			return nil, err
		}
		if cfg.SeverityThreshold, err = model.ParseSeverity(raw); err != nil {
			return nil, err
		}
	}
	if flags.Changed("filter") {
		if cfg.FilterSubstrings, err = flags.GetStringSlice("filter"); err != nil {
			return nil, err
		}
	}

	if cfg.MarkdownSummary, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.JSONSummary, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownSummary && cfg.JSONSummary {
		return nil, errors.New("--markdown and --json are mutually exclusive")
	}
	if cfg.SummaryFile, err = flags.GetString("summary-file"); err != nil {
		return nil, err
	}

	if flags.Changed("db") {
		if cfg.SaveToDB, err = flags.GetBool("db"); err != nil {
			return nil, err
		}
	}
	if cfg.SaveToDB && cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if len(args) == 1 {
		cfg.SitemapURL = strings.TrimSpace(args[0])
	}

	return cfg, nil
}

// runScan executes the crawl: resolve the sitemap tree, open one
// browser session for the whole run, visit every URL, then report.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fmt.Printf("Resolving sitemap tree from %s...\n", cfg.SitemapURL)

	resolver := sitemap.NewResolver(
		&http.Client{Timeout: cfg.FetchTimeout},
		sitemap.WithUserAgent(cfg.FetchUserAgent),
		sitemap.WithMaxDepth(cfg.MaxSitemapDepth),
		sitemap.WithTolerantParsing(cfg.TolerantXML, cfg.Namespaces),
		sitemap.WithLogger(logger),
	)
	urls, err := resolver.Resolve(ctx, cfg.SitemapURL)
	if err != nil {
		return fmt.Errorf("sitemap resolution aborted: %w", err)
	}
	if urls.Len() == 0 {
		return errors.New("no page URLs found in sitemap tree")
	}
	fmt.Printf("Found %d page URLs\n\n", urls.Len())

	// Session setup failure is the one fatal error: without a browser
	// nothing can be crawled.
	session, err := browser.NewSession(ctx, browser.Options{
		Headless:            cfg.Headless,
		DisableGPU:          cfg.DisableGPU,
		NoSandbox:           cfg.NoSandbox,
		DisableSharedMemory: cfg.DisableSharedMemory,
		WindowSize:          cfg.WindowSize,
		UserAgent:           cfg.BrowserUserAgent,
		PageLoadTimeout:     cfg.PageLoadTimeout,
		ScriptTimeout:       cfg.ScriptTimeout,
		Threshold:           cfg.SeverityThreshold,
		Logger:              logger,
	})
	if err != nil {
		return fmt.Errorf("cannot start browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", "error", err)
		}
	}()

	orchestrator := crawl.NewOrchestrator(session, cfg, crawl.WithLogger(logger))
	summary := orchestrator.CrawlAll(ctx, urls.URLs())
	summary.SitemapURL = cfg.SitemapURL

	fmt.Printf("Crawl completed in %s\n", summary.Elapsed.Round(time.Millisecond))

	if err := outputSummary(cfg, summary); err != nil {
		logger.Error("summary output failed", "error", err)
	}
	if err := saveRun(ctx, cfg, summary, logger); err != nil {
		logger.Error("failed to save run to database", "error", err)
	}
	return nil
}

// newSummaryWriter creates the summary writer for the configured format.
func newSummaryWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONSummary:
		return report.NewJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownSummary:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out)
	}
}

// outputSummary writes the run summary to stdout and, when configured,
// to the summary file as well.
func outputSummary(cfg *config.Config, summary *model.RunSummary) error {
	writers := []report.Writer{newSummaryWriter(cfg, os.Stdout)}

	if cfg.SummaryFile != "" {
		dir := filepath.Dir(cfg.SummaryFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create summary directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.SummaryFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create summary file: %w", err)
		}
		defer f.Close()
		writers = append(writers, newSummaryWriter(cfg, f))
	}

	_, err := report.NewMultiWriter(writers...).Write(summary)
	return err
}

// saveRun records the run in the history database if enabled.
func saveRun(ctx context.Context, cfg *config.Config, summary *model.RunSummary, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, summary)
	if err != nil {
		return err
	}
	logger.Info("run saved to database", "id", runID, "dir", cfg.DBDir)
	return nil
}
