package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/consolescan/consolescan/internal/browser"
	"github.com/consolescan/consolescan/internal/config"
	"github.com/consolescan/consolescan/internal/model"
)

// Browser is the session surface the orchestrator needs. The concrete
// implementation lives in internal/browser; tests substitute a fake.
type Browser interface {
	// Navigate visits the URL, bounded by the session's page-load
	// timeout. A timeout is reported via browser.ErrNavigationTimeout.
	Navigate(ctx context.Context, url string) error

	// Diagnostics drains the records captured since the last Navigate.
	Diagnostics(ctx context.Context) ([]model.Diagnostic, error)

	// Close shuts the session down.
	Close() error
}

// Orchestrator runs the per-URL crawl loop against one browser session.
type Orchestrator struct {
	browser     Browser
	outputDir   string
	delay       time.Duration
	createEmpty bool
	filters     []string
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for progress and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator over the given session.
// Filter substrings are lowercased once here; matching at crawl time
// is case-insensitive.
func NewOrchestrator(b Browser, cfg *config.Config, opts ...Option) *Orchestrator {
	filters := make([]string, 0, len(cfg.FilterSubstrings))
	for _, f := range cfg.FilterSubstrings {
		if f = strings.TrimSpace(f); f != "" {
			filters = append(filters, strings.ToLower(f))
		}
	}

	o := &Orchestrator{
		browser:     b,
		outputDir:   cfg.OutputDir,
		delay:       cfg.CrawlDelay,
		createEmpty: cfg.CreateEmptyArtifacts,
		filters:     filters,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CrawlAll visits every URL in order, strictly sequentially, and
// returns the run summary. A failure on one URL never prevents the
// following URLs from being attempted; only context cancellation ends
// the loop early.
func (o *Orchestrator) CrawlAll(ctx context.Context, urls []string) *model.RunSummary {
	summary := &model.RunSummary{
		StartedAt:      time.Now(),
		URLsDiscovered: len(urls),
	}

	for i, pageURL := range urls {
		if ctx.Err() != nil {
			o.logger.Warn("crawl interrupted",
				"processed", i, "remaining", len(urls)-i)
			break
		}

		o.logger.Info("crawling page", "url", pageURL, "progress", fmt.Sprintf("%d/%d", i+1, len(urls)))
		summary.Add(o.crawlOne(ctx, pageURL))
	}

	summary.Elapsed = time.Since(summary.StartedAt)
	return summary
}

// crawlOne processes a single URL through navigation, the politeness
// delay, diagnostic filtering, and the artifact write. The deferred
// recover is the outermost safety net: whatever goes wrong in here is
// converted into a recorded failure artifact and the loop continues.
func (o *Orchestrator) crawlOne(ctx context.Context, pageURL string) (result model.CrawlResult) {
	result = model.CrawlResult{URL: pageURL}

	defer func() {
		if r := recover(); r != nil {
			result.Lines = nil
			result.Failure = model.FailureUnexpected
			result.FailureMessage = fmt.Sprintf("panic: %v", r)
			o.logger.Error("unexpected failure processing page", "url", pageURL, "panic", r)
			o.writeResult(&result)
		}
	}()

	if err := o.browser.Navigate(ctx, pageURL); err != nil {
		if ctx.Err() != nil {
			// Interrupted mid-navigation; leave no artifact for a URL
			// the run never really visited.
			result.Failure = model.FailureSession
			result.FailureMessage = "crawl interrupted"
			return result
		}
		switch {
		case errors.Is(err, browser.ErrNavigationTimeout):
			result.Failure = model.FailureTimeout
		default:
			result.Failure = model.FailureSession
		}
		result.FailureMessage = err.Error()
		o.logger.Warn("navigation failed", "url", pageURL, "kind", string(result.Failure), "error", err)
		o.writeResult(&result)
		return result
	}

	// Let asynchronous script errors surface before reading.
	o.pause(ctx)

	records, err := o.browser.Diagnostics(ctx)
	if err != nil {
		o.logger.Warn("diagnostic retrieval failed, treating as none", "url", pageURL, "error", err)
		records = nil
	}

	for _, d := range records {
		if o.excluded(d.Message) {
			continue
		}
		result.Lines = append(result.Lines, d.Format())
	}

	o.writeResult(&result)
	return result
}

// writeResult writes the artifact for result unless it is an empty
// success and empty-artifact creation is disabled. Failure artifacts
// are always written. A write error costs only this URL's artifact.
func (o *Orchestrator) writeResult(result *model.CrawlResult) {
	if !result.Failed() && len(result.Lines) == 0 && !o.createEmpty {
		o.logger.Debug("no diagnostics, skipping artifact", "url", result.URL)
		return
	}

	path, err := writeArtifact(o.outputDir, *result)
	if err != nil {
		o.logger.Warn("artifact write failed", "url", result.URL, "error", err)
		return
	}
	result.ArtifactPath = path
}

// pause sleeps for the politeness delay, returning early on
// cancellation. A zero delay is a no-op.
func (o *Orchestrator) pause(ctx context.Context) {
	if o.delay <= 0 {
		return
	}
	timer := time.NewTimer(o.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// excluded reports whether a diagnostic message matches any configured
// filter substring, compared case-insensitively.
func (o *Orchestrator) excluded(message string) bool {
	if len(o.filters) == 0 {
		return false
	}
	lowered := strings.ToLower(message)
	for _, f := range o.filters {
		if strings.Contains(lowered, f) {
			return true
		}
	}
	return false
}
