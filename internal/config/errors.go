package config

import (
	"errors"
	"strings"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSitemapURL is returned when no seed sitemap URL was provided,
	// either as an argument or at the interactive prompt.
	ErrNoSitemapURL = errors.New("sitemap URL cannot be empty")

	// ErrInvalidSitemapURL is returned when the seed sitemap URL does
	// not start with http:// or https://.
	ErrInvalidSitemapURL = errors.New("invalid sitemap URL: must start with http:// or https://")

	// ErrNoOutputDir is returned when the artifact output directory is empty.
	ErrNoOutputDir = errors.New("output directory cannot be empty")

	// ErrInvalidFetchTimeout is returned when the sitemap fetch timeout
	// is not positive.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidPageLoadTimeout is returned when the page-load timeout
	// is not positive.
	ErrInvalidPageLoadTimeout = errors.New("invalid page-load timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 to disable the post-navigation pause.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidSitemapDepth is returned when the sitemap recursion
	// bound is not positive.
	ErrInvalidSitemapDepth = errors.New("invalid sitemap depth: must be positive")
)

// HasHTTPScheme reports whether raw begins with an http:// or https://
// prefix. This is the same shallow check applied to every location
// entry extracted from a sitemap; full URL parsing happens later.
func HasHTTPScheme(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
