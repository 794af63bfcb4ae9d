// Package model defines the core data structures used throughout consolescan.
//
// This package contains the following main types:
//   - Severity: Ordered console diagnostic level used for capture thresholds
//   - Diagnostic: A single browser console record captured during a page visit
//   - CrawlResult: The per-URL outcome of a crawl (diagnostic lines or a failure)
//   - RunSummary: Aggregated results for a whole crawl run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (browser, crawl, report, database) need to
// use these types, so centralizing them prevents import cycles.
package model
