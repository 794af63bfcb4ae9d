package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/consolescan/consolescan/internal/model"
)

// Default configuration values.
// These mirror typical sitemap crawler behavior: polite delays, generous
// page-load bounds, and capture limited to the most severe console class.
const (
	// DefaultOutputDir is where per-URL artifact files are written.
	// A relative path keeps artifacts next to wherever the tool is run,
	// which is the least surprising place for a one-shot CLI.
	DefaultOutputDir = "console_errors"

	// DefaultCrawlDelay is the pause after each navigation before
	// diagnostics are read. Asynchronous script errors often surface a
	// moment after the load event fires, so reading immediately would
	// miss them. One second catches the common case without making
	// large crawls unbearably slow.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultFetchTimeout bounds each sitemap HTTP fetch. Sitemaps are
	// small XML documents; 30 seconds is generous even for slow origins.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultFetchUserAgent identifies the crawler in sitemap fetches.
	// A descriptive User-Agent is good practice and lets site operators
	// identify crawler traffic in their logs.
	DefaultFetchUserAgent = "consolescan/1.0 (+https://github.com/consolescan/consolescan)"

	// DefaultBrowserUserAgent is the identifying string the browser
	// itself sends on page requests.
	DefaultBrowserUserAgent = "consolescan/1.0 headless (+https://github.com/consolescan/consolescan)"

	// DefaultWindowSize is the browser viewport as "width,height".
	// A desktop-sized viewport avoids mobile layouts and the different
	// script paths they can trigger.
	DefaultWindowSize = "1920,1080"

	// DefaultPageLoadTimeout bounds each navigation. Slow pages with
	// heavy third-party scripts can legitimately take tens of seconds.
	DefaultPageLoadTimeout = 60 * time.Second

	// DefaultScriptTimeout bounds in-page script evaluation, such as
	// the document-readiness poll after navigation.
	DefaultScriptTimeout = 30 * time.Second

	// DefaultMaxSitemapDepth bounds sitemap index recursion. The
	// visited set already prevents cycles; this guards against
	// pathologically deep legitimate index trees.
	DefaultMaxSitemapDepth = 50

	// AppName is the application name used for XDG directory paths.
	AppName = "consolescan"
)

// DefaultNamespaces is the namespace prefix to URI map recognized when
// querying location elements in sitemap documents. The sitemaps.org
// namespace covers the overwhelming majority of real sitemaps.
func DefaultNamespaces() map[string]string {
	return map[string]string{
		"s": "http://www.sitemaps.org/schemas/sitemap/0.9",
	}
}

// Config holds all configuration options for consolescan.
// This struct is designed to be populated once from defaults, the
// optional config file, and CLI flags, then passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ResolverConfig, BrowserConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// SitemapURL is the seed sitemap to resolve. Must be an absolute
	// http:// or https:// URL.
	SitemapURL string

	// OutputDir is the base path for per-URL artifact files.
	OutputDir string

	// CrawlDelay is the pause after navigation before reading
	// diagnostics. Zero disables the pause.
	CrawlDelay time.Duration

	// CreateEmptyArtifacts controls whether a URL with zero diagnostics
	// still gets an artifact file with an explicit "none found" line.
	// When false, clean pages produce no file at all.
	CreateEmptyArtifacts bool

	// FetchUserAgent is the User-Agent header for sitemap HTTP fetches.
	FetchUserAgent string

	// FetchTimeout bounds each sitemap HTTP fetch.
	FetchTimeout time.Duration

	// MaxSitemapDepth bounds sitemap index recursion depth.
	MaxSitemapDepth int

	// TolerantXML enables recovering a usable tree from malformed
	// sitemap markup instead of aborting the branch.
	TolerantXML bool

	// Namespaces maps namespace prefixes to URIs recognized when
	// querying location elements in strictly parsed sitemaps.
	Namespaces map[string]string

	// Headless runs the browser without a visible window.
	Headless bool

	// DisableGPU disables GPU acceleration, commonly required for
	// headless operation on servers.
	DisableGPU bool

	// NoSandbox bypasses the browser's OS sandbox. Required when
	// running as root in containers.
	NoSandbox bool

	// DisableSharedMemory avoids /dev/shm, which is undersized in many
	// container runtimes.
	DisableSharedMemory bool

	// WindowSize is the browser viewport as "width,height".
	WindowSize string

	// BrowserUserAgent is the identifying string the browser sends.
	BrowserUserAgent string

	// PageLoadTimeout bounds each navigation.
	PageLoadTimeout time.Duration

	// ScriptTimeout bounds in-page script evaluation.
	ScriptTimeout time.Duration

	// SeverityThreshold is the minimum console level captured.
	SeverityThreshold model.Severity

	// FilterSubstrings excludes any diagnostic whose message contains
	// one of these substrings, compared case-insensitively.
	FilterSubstrings []string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// MarkdownSummary renders the run summary as GitHub Flavored
	// Markdown instead of plain text.
	MarkdownSummary bool

	// JSONSummary renders the run summary as JSON instead of plain
	// text. Mutually exclusive with MarkdownSummary.
	JSONSummary bool

	// SummaryFile writes the run summary to this path in addition to
	// stdout. Empty means stdout only.
	SummaryFile string

	// DBDir is the directory for the optional crawl-history SQLite
	// database. Empty disables persistence entirely, which is the
	// default: flat artifact files are the primary output.
	DBDir string

	// SaveToDB records per-URL outcomes in the database. Set when the
	// user opts in via the --db flag or the config file.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, the output
// directory, the headless flag). This also serves as documentation of
// what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:            DefaultOutputDir,
		CrawlDelay:           DefaultCrawlDelay,
		CreateEmptyArtifacts: false,
		FetchUserAgent:       DefaultFetchUserAgent,
		FetchTimeout:         DefaultFetchTimeout,
		MaxSitemapDepth:      DefaultMaxSitemapDepth,
		TolerantXML:          true,
		Namespaces:           DefaultNamespaces(),
		Headless:             true,
		DisableGPU:           true,
		NoSandbox:            true,
		DisableSharedMemory:  true,
		WindowSize:           DefaultWindowSize,
		BrowserUserAgent:     DefaultBrowserUserAgent,
		PageLoadTimeout:      DefaultPageLoadTimeout,
		ScriptTimeout:        DefaultScriptTimeout,
		SeverityThreshold:    model.SeveritySevere,
		FilterSubstrings:     nil,
	}
}

// XDGDataDir returns the XDG data directory for consolescan, used as
// the default location for the optional crawl-history database.
// On Linux: ~/.local/share/consolescan
// On macOS: ~/Library/Application Support/consolescan
// On Windows: %LOCALAPPDATA%\consolescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for consolescan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after flag and prompt handling, before any
// resolution or crawling begins. We return the first error found rather
// than collecting all errors because fixing one error often makes
// others irrelevant.
func (c *Config) Validate() error {
	if c.SitemapURL == "" {
		return ErrNoSitemapURL
	}

	if !HasHTTPScheme(c.SitemapURL) {
		return ErrInvalidSitemapURL
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	// Zero timeouts would cause immediate failures on every operation.
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.PageLoadTimeout <= 0 {
		return ErrInvalidPageLoadTimeout
	}

	// A negative delay is invalid; zero disables the pause.
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxSitemapDepth <= 0 {
		return ErrInvalidSitemapDepth
	}

	return nil
}
