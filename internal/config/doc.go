// Package config provides configuration structures and utilities for
// consolescan. It defines the options for sitemap resolution, the
// headless browser session, diagnostic capture, and artifact output.
//
// Configuration is built once at startup from defaults, an optional
// YAML file, and CLI flags, then treated as immutable for the rest of
// the run. Components receive the Config by reference; there is no
// global mutable configuration state.
package config
