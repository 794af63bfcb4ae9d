package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/consolescan/consolescan/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showClean controls whether pages without diagnostics are listed
	// individually rather than only counted.
	showClean bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowClean lists pages that produced no diagnostics individually.
func WithShowClean(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showClean = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showClean:  false,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeTotals(&sb, summary)
	w.writePages(&sb, summary)
	w.writeFailures(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        CONSOLESCAN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Sitemap:       %s\n", summary.SitemapURL))
	sb.WriteString(fmt.Sprintf("Started:       %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:       %s\n", summary.Elapsed.Round(summaryRounding(summary))))
	sb.WriteString("\n")
}

// writeTotals writes the run totals section.
func (w *SimpleWriter) writeTotals(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOTALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  URLs discovered:    %d\n", summary.URLsDiscovered))
	sb.WriteString(fmt.Sprintf("  Pages crawled:      %d\n", summary.PagesCrawled))
	sb.WriteString(fmt.Sprintf("  With diagnostics:   %d\n", summary.PagesWithDiagnostics()))
	sb.WriteString(fmt.Sprintf("  Diagnostics found:  %d\n", summary.DiagnosticsFound))
	sb.WriteString(fmt.Sprintf("  Artifacts written:  %d\n", summary.ArtifactsWritten))
	sb.WriteString("\n")
}

// writePages writes the per-page section: pages with diagnostics
// always, clean pages only when showClean is set.
func (w *SimpleWriter) writePages(sb *strings.Builder, summary *model.RunSummary) {
	if summary.PagesWithDiagnostics() == 0 && !w.showClean {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, r := range summary.Results {
		if r.Failed() {
			continue
		}
		if len(r.Lines) == 0 && !w.showClean {
			continue
		}
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", len(r.Lines), r.URL))
		if r.ArtifactPath != "" {
			sb.WriteString(fmt.Sprintf("      -> %s\n", r.ArtifactPath))
		}
	}
	sb.WriteString("\n")
}

// writeFailures lists URLs that terminated in a failure.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, summary *model.RunSummary) {
	failures := summary.Failures()
	if len(failures) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, r := range failures {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", r.Failure, r.URL))
		if r.FailureMessage != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", r.FailureMessage))
		}
	}
	sb.WriteString("\n")
}

// summaryRounding picks a display precision proportional to the run
// length so short runs aren't rounded to zero.
func summaryRounding(summary *model.RunSummary) time.Duration {
	if summary.Elapsed < time.Second {
		return time.Millisecond
	}
	return time.Second
}
