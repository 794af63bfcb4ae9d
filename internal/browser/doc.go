// Package browser owns the headless browser session and console
// diagnostic capture.
//
// # Architecture
//
// The package is designed around the Session type, which holds one
// Chrome process for the lifetime of a run. Pages are visited
// sequentially through the same session; console records accumulate in
// an in-memory buffer between navigations and are drained by the
// caller after each page.
//
// Design decision: We drive Chrome through chromedp rather than a
// WebDriver stack because:
//  1. chromedp speaks the Chrome DevTools Protocol natively, with no
//     separate driver binary to provision
//  2. DevTools events give us structured console records (API calls,
//     thrown exceptions, browser log entries) instead of scraped text
//  3. A single allocator plus browser context maps cleanly onto the
//     one-session-per-run resource model
//
// # Diagnostic capture
//
// Three DevTools event streams feed the buffer:
//   - Runtime.consoleAPICalled: console.log/warn/error and friends
//   - Runtime.exceptionThrown: uncaught errors and rejections
//   - Log.entryAdded: browser-originated entries (network, security)
//
// Each event is mapped to a model.Severity and dropped when it falls
// below the session's configured threshold.
//
// # Usage
//
//	session, err := browser.NewSession(ctx, browser.Options{...})
//	if err != nil {
//		return err // fatal: nothing can be crawled without a session
//	}
//	defer session.Close()
//
//	if err := session.Navigate(ctx, url); err != nil { ... }
//	records, _ := session.Diagnostics(ctx)
package browser
