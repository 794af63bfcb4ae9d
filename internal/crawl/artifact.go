package crawl

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/consolescan/consolescan/internal/model"
)

// maxArtifactBaseLen bounds the artifact filename before the .log
// suffix, keeping names well under every common filesystem's limit.
const maxArtifactBaseLen = 200

// unsafeChars are replaced with underscores in artifact names. The set
// covers the characters rejected by at least one common filesystem.
const unsafeChars = `\/*?:"<>|`

// reservedNames are filenames Windows refuses regardless of extension.
// A URL that sanitizes to one of these gets a hash-suffixed fallback.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// ArtifactName derives the artifact filename for a page URL: host plus
// path with the scheme stripped, trailing slash trimmed, unsafe
// characters replaced with underscores, truncated to 200 characters,
// with a .log suffix. The transform is deterministic so re-crawling a
// URL overwrites its previous artifact.
func ArtifactName(pageURL string) string {
	base := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u.Host + u.Path
	} else {
		base = strings.TrimPrefix(base, "https://")
		base = strings.TrimPrefix(base, "http://")
	}

	// Trim before replacement so example.com/a and example.com/a/
	// share one artifact.
	base = strings.TrimSuffix(base, "/")

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if strings.ContainsRune(unsafeChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	base = b.String()

	if len(base) > maxArtifactBaseLen {
		base = base[:maxArtifactBaseLen]
	}
	if base == "" {
		return "index.log"
	}
	if reservedNames[strings.ToUpper(base)] {
		h := fnv.New32a()
		h.Write([]byte(pageURL))
		base = fmt.Sprintf("%s_%08x", base, h.Sum32())
	}
	return base + ".log"
}

// renderArtifact builds the artifact file content for one result: a
// header naming the source URL, then either the formatted diagnostic
// lines, a failure description, or an explicit none-found line.
func renderArtifact(result model.CrawlResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Console diagnostics for %s\n\n", result.URL)

	switch {
	case result.Failed():
		fmt.Fprintf(&b, "Crawl failed (%s): %s\n", result.Failure, result.FailureMessage)
	case len(result.Lines) == 0:
		b.WriteString("No diagnostics found.\n")
	default:
		for _, line := range result.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// writeArtifact writes the artifact for result into dir and returns
// the written path.
func writeArtifact(dir string, result model.CrawlResult) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, ArtifactName(result.URL))
	if err := os.WriteFile(path, []byte(renderArtifact(result)), 0600); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
