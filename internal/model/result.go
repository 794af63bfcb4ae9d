package model

// FailureKind classifies how processing a single URL went wrong.
// The kind is written into the URL's artifact so a reader can tell a
// slow page from a broken session without consulting the run log.
type FailureKind string

const (
	// FailureNone means the URL was processed normally. The result may
	// still carry zero diagnostic lines.
	FailureNone FailureKind = ""

	// FailureTimeout means navigation did not complete within the
	// configured page-load timeout.
	FailureTimeout FailureKind = "timeout"

	// FailureSession means the browser session returned an error during
	// navigation or log retrieval for this URL.
	FailureSession FailureKind = "session"

	// FailureUnexpected means something outside the anticipated error
	// paths happened while processing this URL. This is the outermost
	// safety net; the run continues with the next URL.
	FailureUnexpected FailureKind = "unexpected"
)

// CrawlResult is the outcome of processing one page URL: either a list
// of formatted diagnostic lines, or a single terminal failure. Exactly
// one artifact corresponds to each result that was written.
type CrawlResult struct {
	// URL is the page URL this result belongs to.
	URL string

	// Lines are the formatted diagnostic lines that passed filtering.
	// Empty when the page produced no (unfiltered) diagnostics or when
	// the crawl failed before diagnostics could be read.
	Lines []string

	// Failure classifies a terminal failure, FailureNone on success.
	Failure FailureKind

	// FailureMessage carries the failure detail written to the artifact.
	FailureMessage string

	// ArtifactPath is the path of the written artifact. Empty when no
	// artifact was written (empty result with artifact creation
	// disabled, or the write itself failed).
	ArtifactPath string
}

// Failed reports whether the URL terminated in a failure rather than a
// normal (possibly empty) diagnostic capture.
func (r CrawlResult) Failed() bool {
	return r.Failure != FailureNone
}
