package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/consolescan/consolescan/internal/browser"
	"github.com/consolescan/consolescan/internal/config"
	"github.com/consolescan/consolescan/internal/model"
)

// pageScript describes what the fake browser does for one URL.
type pageScript struct {
	navErr   error
	panicMsg string
	records  []model.Diagnostic
	diagErr  error
}

// fakeBrowser replays scripted outcomes per URL.
type fakeBrowser struct {
	pages   map[string]pageScript
	current string
	visited []string
	closed  bool
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	f.current = url
	f.visited = append(f.visited, url)
	script := f.pages[url]
	if script.panicMsg != "" {
		panic(script.panicMsg)
	}
	return script.navErr
}

func (f *fakeBrowser) Diagnostics(_ context.Context) ([]model.Diagnostic, error) {
	script := f.pages[f.current]
	return script.records, script.diagErr
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.OutputDir = t.TempDir()
	cfg.CrawlDelay = 0
	return cfg
}

func newTestOrchestrator(b Browser, cfg *config.Config) *Orchestrator {
	return NewOrchestrator(b, cfg,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func severeRecord(message string) model.Diagnostic {
	return model.Diagnostic{
		Severity:  model.SeveritySevere,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Source:    "console",
	}
}

func readArtifact(t *testing.T, dir, url string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ArtifactName(url)))
	if err != nil {
		t.Fatalf("read artifact for %s: %v", url, err)
	}
	return string(data)
}

func TestCrawlAllWritesDiagnostics(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fake := &fakeBrowser{pages: map[string]pageScript{
		"https://example.com/broken": {records: []model.Diagnostic{
			severeRecord("Uncaught TypeError: x is undefined"),
			severeRecord("Failed to load resource: 500"),
		}},
	}}

	summary := newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
		[]string{"https://example.com/broken"})

	if summary.PagesCrawled != 1 || summary.ArtifactsWritten != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if summary.DiagnosticsFound != 2 {
		t.Errorf("DiagnosticsFound = %d, expected 2", summary.DiagnosticsFound)
	}

	content := readArtifact(t, cfg.OutputDir, "https://example.com/broken")
	if !strings.Contains(content, "SEVERE - Uncaught TypeError: x is undefined") {
		t.Errorf("missing first diagnostic: %q", content)
	}
	if !strings.Contains(content, "SEVERE - Failed to load resource: 500") {
		t.Errorf("missing second diagnostic: %q", content)
	}
}

// TestCrawlAllTimeoutIsolation is the timeout scenario: the first URL
// times out, its artifact cites the limit, and the second URL is still
// attempted and produces its own artifact.
func TestCrawlAllTimeoutIsolation(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	timeoutErr := fmt.Errorf("%w after %s", browser.ErrNavigationTimeout, time.Minute)
	fake := &fakeBrowser{pages: map[string]pageScript{
		"https://example.com/slow": {navErr: timeoutErr},
		"https://example.com/ok":   {records: []model.Diagnostic{severeRecord("boom")}},
	}}

	summary := newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
		[]string{"https://example.com/slow", "https://example.com/ok"})

	if len(fake.visited) != 2 {
		t.Fatalf("visited %v, expected both URLs", fake.visited)
	}
	if summary.FailureCount(model.FailureTimeout) != 1 {
		t.Errorf("timeout count = %d, expected 1", summary.FailureCount(model.FailureTimeout))
	}

	slow := readArtifact(t, cfg.OutputDir, "https://example.com/slow")
	if !strings.Contains(slow, "timeout") || !strings.Contains(slow, "1m0s") {
		t.Errorf("timeout artifact does not cite the limit: %q", slow)
	}
	ok := readArtifact(t, cfg.OutputDir, "https://example.com/ok")
	if !strings.Contains(ok, "boom") {
		t.Errorf("second URL artifact missing: %q", ok)
	}
}

// TestCrawlAllFilter is the filter scenario: a severe diagnostic whose
// message matches a configured substring is excluded.
func TestCrawlAllFilter(t *testing.T) {
	t.Parallel()

	t.Run("filtered page is skipped when empty artifacts are off", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.FilterSubstrings = []string{"FAVICON"}
		fake := &fakeBrowser{pages: map[string]pageScript{
			"https://example.com/page": {records: []model.Diagnostic{
				severeRecord("Failed to load favicon.ico: 404"),
			}},
		}}

		summary := newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
			[]string{"https://example.com/page"})

		if summary.DiagnosticsFound != 0 {
			t.Errorf("DiagnosticsFound = %d, expected 0", summary.DiagnosticsFound)
		}
		if summary.ArtifactsWritten != 0 {
			t.Errorf("ArtifactsWritten = %d, expected 0", summary.ArtifactsWritten)
		}
		path := filepath.Join(cfg.OutputDir, ArtifactName("https://example.com/page"))
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("artifact unexpectedly exists")
		}
	})

	t.Run("filter excludes only matching records", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.FilterSubstrings = []string{"favicon"}
		fake := &fakeBrowser{pages: map[string]pageScript{
			"https://example.com/page": {records: []model.Diagnostic{
				severeRecord("Failed to load Favicon.ico"),
				severeRecord("Uncaught ReferenceError: init is not defined"),
			}},
		}}

		newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
			[]string{"https://example.com/page"})

		content := readArtifact(t, cfg.OutputDir, "https://example.com/page")
		if strings.Contains(content, "Favicon") {
			t.Errorf("filtered record leaked into artifact: %q", content)
		}
		if !strings.Contains(content, "ReferenceError") {
			t.Errorf("unfiltered record missing: %q", content)
		}
	})

	t.Run("filtered page still gets a file when empty artifacts are on", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.CreateEmptyArtifacts = true
		cfg.FilterSubstrings = []string{"favicon"}
		fake := &fakeBrowser{pages: map[string]pageScript{
			"https://example.com/page": {records: []model.Diagnostic{
				severeRecord("Failed to load favicon.ico"),
			}},
		}}

		newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
			[]string{"https://example.com/page"})

		content := readArtifact(t, cfg.OutputDir, "https://example.com/page")
		if !strings.Contains(content, "No diagnostics found.") {
			t.Errorf("missing none-found line: %q", content)
		}
	})
}

func TestCrawlAllSessionErrorIsolation(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fake := &fakeBrowser{pages: map[string]pageScript{
		"https://example.com/bad": {navErr: &browser.SessionError{
			Op: "navigate", Err: errors.New("tab crashed"),
		}},
		"https://example.com/ok": {records: []model.Diagnostic{severeRecord("boom")}},
	}}

	summary := newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
		[]string{"https://example.com/bad", "https://example.com/ok"})

	if summary.FailureCount(model.FailureSession) != 1 {
		t.Errorf("session failure count = %d, expected 1", summary.FailureCount(model.FailureSession))
	}
	bad := readArtifact(t, cfg.OutputDir, "https://example.com/bad")
	if !strings.Contains(bad, "Crawl failed (session)") || !strings.Contains(bad, "tab crashed") {
		t.Errorf("session failure artifact wrong: %q", bad)
	}
	if len(fake.visited) != 2 {
		t.Errorf("visited %v, expected both URLs", fake.visited)
	}
}

func TestCrawlAllRecoversFromPanic(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fake := &fakeBrowser{pages: map[string]pageScript{
		"https://example.com/cursed": {panicMsg: "nil map write"},
		"https://example.com/ok":     {records: []model.Diagnostic{severeRecord("boom")}},
	}}

	summary := newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
		[]string{"https://example.com/cursed", "https://example.com/ok"})

	if summary.FailureCount(model.FailureUnexpected) != 1 {
		t.Fatalf("unexpected failure count = %d, expected 1", summary.FailureCount(model.FailureUnexpected))
	}

	cursed := readArtifact(t, cfg.OutputDir, "https://example.com/cursed")
	if !strings.Contains(cursed, "Crawl failed (unexpected)") || !strings.Contains(cursed, "nil map write") {
		t.Errorf("panic artifact wrong: %q", cursed)
	}
	if len(fake.visited) != 2 {
		t.Errorf("visited %v, expected the run to continue past the panic", fake.visited)
	}
}

func TestCrawlAllDiagnosticRetrievalFailure(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.CreateEmptyArtifacts = true
	fake := &fakeBrowser{pages: map[string]pageScript{
		"https://example.com/page": {diagErr: errors.New("devtools hiccup")},
	}}

	summary := newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
		[]string{"https://example.com/page"})

	// Retrieval failure is zero records, not a failed URL.
	if summary.PagesCrawled != 1 {
		t.Errorf("PagesCrawled = %d, expected 1", summary.PagesCrawled)
	}
	content := readArtifact(t, cfg.OutputDir, "https://example.com/page")
	if !strings.Contains(content, "No diagnostics found.") {
		t.Errorf("unexpected artifact content: %q", content)
	}
}

func TestCrawlAllEmptySuccessSkipsArtifact(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fake := &fakeBrowser{pages: map[string]pageScript{
		"https://example.com/clean": {},
	}}

	summary := newTestOrchestrator(fake, cfg).CrawlAll(context.Background(),
		[]string{"https://example.com/clean"})

	if summary.ArtifactsWritten != 0 {
		t.Errorf("ArtifactsWritten = %d, expected 0", summary.ArtifactsWritten)
	}
	entries, err := os.ReadDir(cfg.OutputDir)
	if err == nil && len(entries) != 0 {
		t.Errorf("output directory not empty: %v", entries)
	}
}

func TestCrawlAllStopsOnCancellation(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	fake := &fakeBrowser{pages: map[string]pageScript{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := newTestOrchestrator(fake, cfg).CrawlAll(ctx,
		[]string{"https://example.com/a", "https://example.com/b"})

	if len(fake.visited) != 0 {
		t.Errorf("visited %v, expected none after cancellation", fake.visited)
	}
	if len(summary.Results) != 0 {
		t.Errorf("results recorded after cancellation: %v", summary.Results)
	}
}

func TestCrawlAllOrder(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	urls := []string{
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
	}
	fake := &fakeBrowser{pages: map[string]pageScript{}}

	newTestOrchestrator(fake, cfg).CrawlAll(context.Background(), urls)

	for i, u := range urls {
		if fake.visited[i] != u {
			t.Errorf("visited[%d] = %q, expected %q", i, fake.visited[i], u)
		}
	}
}
