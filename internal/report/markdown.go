package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/consolescan/consolescan/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeTotals(md, summary)
	w.writePages(md, summary)
	w.writeFailures(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("Console Scan Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Sitemap", "`" + summary.SitemapURL + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", summary.Elapsed.Round(summaryRounding(summary)).String()},
		},
	})
	md.PlainText("")
}

// writeTotals writes the run totals section with a severity alert.
func (w *MarkdownWriter) writeTotals(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Totals")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"URLs discovered", strconv.Itoa(summary.URLsDiscovered)},
			{"Pages crawled", strconv.Itoa(summary.PagesCrawled)},
			{"Pages with diagnostics", strconv.Itoa(summary.PagesWithDiagnostics())},
			{"Diagnostics found", strconv.Itoa(summary.DiagnosticsFound)},
			{"Artifacts written", strconv.Itoa(summary.ArtifactsWritten)},
		},
	})
	md.PlainText("")

	if summary.DiagnosticsFound > 0 || len(summary.Failures()) > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of page outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.RunSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Outcomes"),
		piechart.WithShowData(true),
	)

	withDiagnostics := summary.PagesWithDiagnostics()
	clean := summary.PagesCrawled - withDiagnostics
	failed := len(summary.Failures())

	if withDiagnostics > 0 {
		chart.LabelAndIntValue("With diagnostics", uint64(withDiagnostics))
	}
	if clean > 0 {
		chart.LabelAndIntValue("Clean", uint64(clean))
	}
	if failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on what the run found.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	failed := len(summary.Failures())
	switch {
	case summary.DiagnosticsFound > 0:
		md.Warningf(
			"%d console diagnostic(s) captured across %d page(s).",
			summary.DiagnosticsFound, summary.PagesWithDiagnostics(),
		)
	case failed > 0:
		md.Importantf(
			"No diagnostics captured, but %d page(s) could not be crawled.",
			failed,
		)
	default:
		md.Tip("No console diagnostics found on any crawled page.")
	}
	md.PlainText("")
}

// writePages lists pages that produced diagnostics.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Pages With Diagnostics")
	md.PlainText("")

	if summary.PagesWithDiagnostics() == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, summary.PagesWithDiagnostics())
	for _, r := range summary.Results {
		if r.Failed() || len(r.Lines) == 0 {
			continue
		}
		rows = append(rows, []string{
			"`" + r.URL + "`",
			strconv.Itoa(len(r.Lines)),
			"`" + r.ArtifactPath + "`",
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Diagnostics", "Artifact"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures lists URLs that terminated in a failure.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *model.RunSummary) {
	failures := summary.Failures()
	if len(failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, 0, len(failures))
	for _, r := range failures {
		rows = append(rows, []string{
			"`" + r.URL + "`",
			string(r.Failure),
			r.FailureMessage,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Kind", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}
