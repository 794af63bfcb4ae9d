package model

import "time"

// RunSummary aggregates the outcome of one whole crawl run for
// reporting. It is built incrementally by the orchestrator as URLs are
// processed and handed to the report writers afterwards.
type RunSummary struct {
	// SitemapURL is the seed sitemap the run started from.
	SitemapURL string

	// StartedAt is when crawling (not sitemap resolution) began.
	StartedAt time.Time

	// Elapsed is the total crawl duration.
	Elapsed time.Duration

	// URLsDiscovered is the size of the resolved page URL set.
	URLsDiscovered int

	// PagesCrawled counts URLs whose processing completed without a
	// terminal failure (they may still have produced zero diagnostics).
	PagesCrawled int

	// ArtifactsWritten counts artifact files successfully written.
	ArtifactsWritten int

	// DiagnosticsFound is the total number of diagnostic lines recorded
	// across all pages, after filtering.
	DiagnosticsFound int

	// Results holds the per-URL outcomes in crawl order.
	Results []CrawlResult
}

// Add folds one per-URL result into the summary totals.
func (s *RunSummary) Add(result CrawlResult) {
	s.Results = append(s.Results, result)
	if !result.Failed() {
		s.PagesCrawled++
	}
	if result.ArtifactPath != "" {
		s.ArtifactsWritten++
	}
	s.DiagnosticsFound += len(result.Lines)
}

// FailureCount returns how many URLs terminated with the given kind.
func (s *RunSummary) FailureCount(kind FailureKind) int {
	count := 0
	for _, r := range s.Results {
		if r.Failure == kind {
			count++
		}
	}
	return count
}

// Failures returns the results that terminated in any failure, in
// crawl order. Used by report writers to list problem URLs.
func (s *RunSummary) Failures() []CrawlResult {
	failures := make([]CrawlResult, 0)
	for _, r := range s.Results {
		if r.Failed() {
			failures = append(failures, r)
		}
	}
	return failures
}

// PagesWithDiagnostics counts pages that produced at least one
// diagnostic line after filtering.
func (s *RunSummary) PagesWithDiagnostics() int {
	count := 0
	for _, r := range s.Results {
		if len(r.Lines) > 0 {
			count++
		}
	}
	return count
}
