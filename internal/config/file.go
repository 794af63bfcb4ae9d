package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/consolescan/consolescan/internal/model"
)

// Duration wraps time.Duration to support human-readable YAML values.
// The config file accepts either a Go duration string ("30s", "1m30s")
// or a bare number interpreted as seconds.
type Duration struct {
	time.Duration
}

// MarshalYAML emits duration values as strings.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// UnmarshalYAML accepts either a string duration or numeric seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil {
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", asString, err)
		}
		d.Duration = parsed
		return nil
	}

	var asSeconds float64
	if err := node.Decode(&asSeconds); err == nil {
		d.Duration = time.Duration(asSeconds * float64(time.Second))
		return nil
	}

	return fmt.Errorf("unsupported duration value %q", node.Value)
}

// FetchSection holds sitemap HTTP fetch options in the config file.
type FetchSection struct {
	// UserAgent overrides the User-Agent header for sitemap fetches.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Timeout overrides the bound on each sitemap fetch.
	Timeout Duration `yaml:"timeout,omitempty"`
}

// BrowserSection holds browser session options in the config file.
//
// The boolean launch flags use pointers so that an absent key keeps the
// default while an explicit "false" turns the flag off.
type BrowserSection struct {
	Headless            *bool  `yaml:"headless,omitempty"`
	DisableGPU          *bool  `yaml:"disable_gpu,omitempty"`
	NoSandbox           *bool  `yaml:"no_sandbox,omitempty"`
	DisableSharedMemory *bool  `yaml:"disable_shared_memory,omitempty"`
	WindowSize          string `yaml:"window_size,omitempty"`
	UserAgent           string `yaml:"user_agent,omitempty"`

	// PageLoadTimeout bounds each navigation.
	PageLoadTimeout Duration `yaml:"page_load_timeout,omitempty"`

	// ScriptTimeout bounds in-page script evaluation.
	ScriptTimeout Duration `yaml:"script_timeout,omitempty"`

	// LogLevel is the minimum console severity captured:
	// ALL, INFO, WARNING, or SEVERE.
	LogLevel string `yaml:"log_level,omitempty"`
}

// SitemapSection holds sitemap parsing options in the config file.
type SitemapSection struct {
	// Namespaces maps namespace prefixes to URIs recognized when
	// querying location elements.
	Namespaces map[string]string `yaml:"namespaces,omitempty"`

	// TolerantXML enables recovery from malformed sitemap markup.
	TolerantXML *bool `yaml:"tolerant_xml,omitempty"`

	// MaxDepth bounds sitemap index recursion.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// File represents the structure of the .consolescan configuration file.
// Every field is optional; absent keys keep the built-in defaults.
type File struct {
	// OutputDir is the base path for per-URL artifact files.
	OutputDir string `yaml:"output_dir,omitempty"`

	// CrawlDelay is the pause after navigation before reading diagnostics.
	CrawlDelay *Duration `yaml:"crawl_delay,omitempty"`

	// CreateEmptyLogs controls whether clean pages still get a file.
	CreateEmptyLogs *bool `yaml:"create_empty_logs,omitempty"`

	// Filters lists case-insensitive substrings; a diagnostic whose
	// message contains any of them is excluded.
	Filters []string `yaml:"filters,omitempty"`

	Fetch   FetchSection   `yaml:"fetch,omitempty"`
	Browser BrowserSection `yaml:"browser,omitempty"`
	Sitemap SitemapSection `yaml:"sitemap,omitempty"`

	// DBDir enables the crawl-history database in the given directory.
	// "default" selects the XDG data directory.
	DBDir string `yaml:"db_dir,omitempty"`
}

// Apply overlays the file's explicit values onto cfg.
// Absent keys leave cfg untouched, so precedence is
// defaults < config file < CLI flags.
func (f *File) Apply(cfg *Config) error {
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.CrawlDelay != nil {
		cfg.CrawlDelay = f.CrawlDelay.Duration
	}
	if f.CreateEmptyLogs != nil {
		cfg.CreateEmptyArtifacts = *f.CreateEmptyLogs
	}
	if len(f.Filters) > 0 {
		cfg.FilterSubstrings = f.Filters
	}

	if f.Fetch.UserAgent != "" {
		cfg.FetchUserAgent = f.Fetch.UserAgent
	}
	if f.Fetch.Timeout.Duration > 0 {
		cfg.FetchTimeout = f.Fetch.Timeout.Duration
	}

	if f.Browser.Headless != nil {
		cfg.Headless = *f.Browser.Headless
	}
	if f.Browser.DisableGPU != nil {
		cfg.DisableGPU = *f.Browser.DisableGPU
	}
	if f.Browser.NoSandbox != nil {
		cfg.NoSandbox = *f.Browser.NoSandbox
	}
	if f.Browser.DisableSharedMemory != nil {
		cfg.DisableSharedMemory = *f.Browser.DisableSharedMemory
	}
	if f.Browser.WindowSize != "" {
		cfg.WindowSize = f.Browser.WindowSize
	}
	if f.Browser.UserAgent != "" {
		cfg.BrowserUserAgent = f.Browser.UserAgent
	}
	if f.Browser.PageLoadTimeout.Duration > 0 {
		cfg.PageLoadTimeout = f.Browser.PageLoadTimeout.Duration
	}
	if f.Browser.ScriptTimeout.Duration > 0 {
		cfg.ScriptTimeout = f.Browser.ScriptTimeout.Duration
	}
	if f.Browser.LogLevel != "" {
		threshold, err := model.ParseSeverity(f.Browser.LogLevel)
		if err != nil {
			return fmt.Errorf("browser.log_level: %w", err)
		}
		cfg.SeverityThreshold = threshold
	}

	if len(f.Sitemap.Namespaces) > 0 {
		cfg.Namespaces = f.Sitemap.Namespaces
	}
	if f.Sitemap.TolerantXML != nil {
		cfg.TolerantXML = *f.Sitemap.TolerantXML
	}
	if f.Sitemap.MaxDepth > 0 {
		cfg.MaxSitemapDepth = f.Sitemap.MaxDepth
	}

	if f.DBDir != "" {
		cfg.SaveToDB = true
		if f.DBDir == "default" {
			cfg.DBDir = XDGDataDir()
		} else {
			cfg.DBDir = f.DBDir
		}
	}

	return nil
}
