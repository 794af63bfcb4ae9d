package config

import (
	"errors"
	"testing"
	"time"

	"github.com/consolescan/consolescan/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. Changes to defaults should be intentional; this test
// serves as living documentation of them.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default OutputDir is console_errors", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputDir != "console_errors" {
			t.Errorf("expected OutputDir to be 'console_errors', got %q", cfg.OutputDir)
		}
	})

	t.Run("default CrawlDelay is 1 second", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDelay != 1*time.Second {
			t.Errorf("expected CrawlDelay to be 1s, got %v", cfg.CrawlDelay)
		}
	})

	t.Run("empty artifacts are not created by default", func(t *testing.T) {
		t.Parallel()
		if cfg.CreateEmptyArtifacts {
			t.Error("expected CreateEmptyArtifacts to be false")
		}
	})

	t.Run("default FetchTimeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.FetchTimeout != 30*time.Second {
			t.Errorf("expected FetchTimeout to be 30s, got %v", cfg.FetchTimeout)
		}
	})

	t.Run("default PageLoadTimeout is 60 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.PageLoadTimeout != 60*time.Second {
			t.Errorf("expected PageLoadTimeout to be 60s, got %v", cfg.PageLoadTimeout)
		}
	})

	t.Run("browser launches headless with container-safe flags", func(t *testing.T) {
		t.Parallel()
		if !cfg.Headless || !cfg.DisableGPU || !cfg.NoSandbox || !cfg.DisableSharedMemory {
			t.Error("expected all browser launch flags to default to true")
		}
	})

	t.Run("default severity threshold is SEVERE", func(t *testing.T) {
		t.Parallel()
		if cfg.SeverityThreshold != model.SeveritySevere {
			t.Errorf("expected SeverityThreshold SEVERE, got %v", cfg.SeverityThreshold)
		}
	})

	t.Run("tolerant XML parsing defaults on", func(t *testing.T) {
		t.Parallel()
		if !cfg.TolerantXML {
			t.Error("expected TolerantXML to be true")
		}
	})

	t.Run("sitemaps.org namespace is recognized by default", func(t *testing.T) {
		t.Parallel()
		if cfg.Namespaces["s"] != "http://www.sitemaps.org/schemas/sitemap/0.9" {
			t.Errorf("unexpected default namespaces: %v", cfg.Namespaces)
		}
	})

	t.Run("database persistence defaults off", func(t *testing.T) {
		t.Parallel()
		if cfg.SaveToDB || cfg.DBDir != "" {
			t.Error("expected database persistence to be disabled by default")
		}
	})
}

// TestConfigValidate tests validation error cases.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.SitemapURL = "https://example.com/sitemap.xml"
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	testCases := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{
			name:     "empty sitemap URL",
			mutate:   func(c *Config) { c.SitemapURL = "" },
			expected: ErrNoSitemapURL,
		},
		{
			name:     "sitemap URL without scheme",
			mutate:   func(c *Config) { c.SitemapURL = "example.com/sitemap.xml" },
			expected: ErrInvalidSitemapURL,
		},
		{
			name:     "ftp sitemap URL",
			mutate:   func(c *Config) { c.SitemapURL = "ftp://example.com/sitemap.xml" },
			expected: ErrInvalidSitemapURL,
		},
		{
			name:     "empty output directory",
			mutate:   func(c *Config) { c.OutputDir = "" },
			expected: ErrNoOutputDir,
		},
		{
			name:     "zero fetch timeout",
			mutate:   func(c *Config) { c.FetchTimeout = 0 },
			expected: ErrInvalidFetchTimeout,
		},
		{
			name:     "zero page-load timeout",
			mutate:   func(c *Config) { c.PageLoadTimeout = 0 },
			expected: ErrInvalidPageLoadTimeout,
		},
		{
			name:     "negative crawl delay",
			mutate:   func(c *Config) { c.CrawlDelay = -time.Second },
			expected: ErrInvalidCrawlDelay,
		},
		{
			name:     "zero sitemap depth",
			mutate:   func(c *Config) { c.MaxSitemapDepth = 0 },
			expected: ErrInvalidSitemapDepth,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

// TestHasHTTPScheme tests the shallow scheme check shared with the
// resolver's location validation.
func TestHasHTTPScheme(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{"http://example.com", true},
		{"https://example.com/a", true},
		{"ftp://example.com", false},
		{"//example.com", false},
		{"/relative/path", false},
		{"", false},
	}

	for _, tc := range testCases {
		if got := HasHTTPScheme(tc.input); got != tc.expected {
			t.Errorf("HasHTTPScheme(%q) = %v, expected %v", tc.input, got, tc.expected)
		}
	}
}
