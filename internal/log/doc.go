// Package log provides logging for consolescan, built on top of the
// standard slog package.
//
// Browser console messages routinely span multiple lines (stack
// traces, serialized objects) and can run to kilobytes. Logged raw,
// they break line-oriented log output and drown out everything else.
// The CompactHandler wraps any slog.Handler and normalizes string
// attributes before they reach it: newlines are flattened to spaces
// and oversized values are truncated with an ellipsis marker.
//
// Design decision: We use a handler wrapper rather than a custom
// logger because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites keep logging messages verbatim; compaction is a
//     presentation concern, applied in one place
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Warn("page diagnostic",
//	    "message", multiLineStackTrace, // flattened and bounded
//	    "url", pageURL,
//	)
package log
