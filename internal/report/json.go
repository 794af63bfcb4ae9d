package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/consolescan/consolescan/internal/model"
)

// JSONWriter outputs summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// version is the consolescan version recorded in the output.
	version string

	// indent enables pretty-printed JSON output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonSummary is the wire form of a run summary.
//
// Design decision: We map the summary to a dedicated wire struct rather
// than tagging model.RunSummary because this allows output-specific
// fields (version, derived counts) without polluting the core data
// structure.
type jsonSummary struct {
	Version          string       `json:"version"`
	SitemapURL       string       `json:"sitemap_url"`
	StartedAt        time.Time    `json:"started_at"`
	ElapsedSeconds   float64      `json:"elapsed_seconds"`
	URLsDiscovered   int          `json:"urls_discovered"`
	PagesCrawled     int          `json:"pages_crawled"`
	PagesWithIssues  int          `json:"pages_with_diagnostics"`
	DiagnosticsFound int          `json:"diagnostics_found"`
	ArtifactsWritten int          `json:"artifacts_written"`
	Results          []jsonResult `json:"results"`
}

// jsonResult is the wire form of one per-URL outcome.
type jsonResult struct {
	URL             string `json:"url"`
	DiagnosticCount int    `json:"diagnostic_count"`
	Failure         string `json:"failure,omitempty"`
	FailureMessage  string `json:"failure_message,omitempty"`
	ArtifactPath    string `json:"artifact_path,omitempty"`
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	out := jsonSummary{
		Version:          w.version,
		SitemapURL:       summary.SitemapURL,
		StartedAt:        summary.StartedAt,
		ElapsedSeconds:   summary.Elapsed.Seconds(),
		URLsDiscovered:   summary.URLsDiscovered,
		PagesCrawled:     summary.PagesCrawled,
		PagesWithIssues:  summary.PagesWithDiagnostics(),
		DiagnosticsFound: summary.DiagnosticsFound,
		ArtifactsWritten: summary.ArtifactsWritten,
		Results:          make([]jsonResult, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		out.Results = append(out.Results, jsonResult{
			URL:             r.URL,
			DiagnosticCount: len(r.Lines),
			Failure:         string(r.Failure),
			FailureMessage:  r.FailureMessage,
			ArtifactPath:    r.ArtifactPath,
		})
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output.
	data = append(data, '\n')
	return w.output.Write(data)
}
