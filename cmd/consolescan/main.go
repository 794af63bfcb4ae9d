// Package main provides the entry point for the consolescan CLI.
//
// consolescan resolves a site's sitemap tree into page URLs, visits
// each page in a headless browser, and records severe console
// diagnostics into one log file per URL.
//
// Usage:
//
//	consolescan scan https://example.com/sitemap.xml
//	consolescan scan
//
// See --help for all available options.
package main

// main is the entry point for consolescan.
func main() {
	Execute()
}
