// Package crawl sequentially visits resolved page URLs and writes one
// diagnostic artifact per URL.
//
// # Architecture
//
// The package is designed around the Orchestrator type, which owns the
// crawl loop: it borrows a browser session for the run's duration,
// navigates to each URL in order, filters and formats the captured
// console records, and writes the per-URL artifact file.
//
// # Failure isolation
//
// Nothing that happens while processing one URL may stop the rest of
// the run. Navigation timeouts and session errors become dedicated
// failure artifacts for that URL; a panic in per-URL processing is
// recovered at the loop boundary and recorded the same way. Only
// session setup failure, which happens before the loop and outside
// this package, is fatal.
//
// # Artifacts
//
// Artifact filenames are derived deterministically from the page URL:
// host plus path, scheme stripped, filesystem-unsafe characters
// replaced, bounded to 200 characters before the .log suffix. Two URLs
// differing only by a trailing slash share one name.
package crawl
