// Package report renders crawl run summaries in multiple output formats.
//
// The per-URL artifact files are the primary output of a run; the
// summary is the operator-facing digest printed when the run ends:
// how many URLs were discovered, how many pages produced diagnostics,
// and which URLs failed and why.
//
// Supported formats:
//   - Simple: human-readable text for terminal display
//   - Markdown: GitHub Flavored Markdown for documentation and sharing
//   - JSON: machine-readable output for tool integration
//
// All writers implement the Writer interface, and MultiWriter fans one
// summary out to several destinations (typically terminal plus file).
package report
