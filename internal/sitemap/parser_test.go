package sitemap

import (
	"errors"
	"testing"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

func testNamespaces() map[string]string {
	return map[string]string{"s": sitemapNS}
}

// TestParserTolerant tests recovery-mode parsing.
func TestParserTolerant(t *testing.T) {
	t.Parallel()

	parser := NewParser(true, testNamespaces())

	t.Run("parses a namespaced urlset", func(t *testing.T) {
		t.Parallel()

		data := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>  https://example.com/  </loc><lastmod>2024-01-01</lastmod></url>
  <url><loc>https://example.com/about</loc></url>
  <url><loc>/relative/page</loc></url>
  <url><loc></loc></url>
</urlset>`

		doc, err := parser.Parse([]byte(data))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if doc.Kind != KindURLSet {
			t.Errorf("Kind = %v, expected KindURLSet", doc.Kind)
		}
		if doc.RootName != "urlset" {
			t.Errorf("RootName = %q", doc.RootName)
		}
		// Whitespace is trimmed; empty and relative entries are kept
		// for the resolver to reject with a logged warning.
		expected := []string{"https://example.com/", "https://example.com/about", "/relative/page", ""}
		if len(doc.Locations) != len(expected) {
			t.Fatalf("Locations = %v, expected %v", doc.Locations, expected)
		}
		for i, loc := range expected {
			if doc.Locations[i] != loc {
				t.Errorf("Locations[%d] = %q, expected %q", i, doc.Locations[i], loc)
			}
		}
	})

	t.Run("parses a sitemap index", func(t *testing.T) {
		t.Parallel()

		data := `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-posts.xml</loc></sitemap>
  <sitemap><loc>sitemap-pages.xml</loc></sitemap>
</sitemapindex>`

		doc, err := parser.Parse([]byte(data))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if doc.Kind != KindIndex {
			t.Errorf("Kind = %v, expected KindIndex", doc.Kind)
		}
		if len(doc.Locations) != 2 || doc.Locations[1] != "sitemap-pages.xml" {
			t.Errorf("Locations = %v", doc.Locations)
		}
	})

	t.Run("recovers from malformed markup", func(t *testing.T) {
		t.Parallel()

		// Unclosed <url> and a stray ampersand; a strict parser would abort.
		data := `<urlset>
  <url><loc>https://example.com/a?x=1&y=2</loc>
  <url><loc>https://example.com/b</loc></url>
</urlset>`

		doc, err := parser.Parse([]byte(data))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if doc.Kind != KindURLSet {
			t.Errorf("Kind = %v, expected KindURLSet", doc.Kind)
		}
		if len(doc.Locations) != 2 {
			t.Errorf("Locations = %v, expected 2 entries", doc.Locations)
		}
	})

	t.Run("strips namespace prefixes from element names", func(t *testing.T) {
		t.Parallel()

		data := `<s:urlset xmlns:s="http://www.sitemaps.org/schemas/sitemap/0.9">
  <s:url><s:loc>https://example.com/prefixed</s:loc></s:url>
</s:urlset>`

		doc, err := parser.Parse([]byte(data))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if doc.Kind != KindURLSet {
			t.Errorf("Kind = %v, expected KindURLSet", doc.Kind)
		}
		if len(doc.Locations) != 1 || doc.Locations[0] != "https://example.com/prefixed" {
			t.Errorf("Locations = %v", doc.Locations)
		}
	})

	t.Run("unknown root yields KindUnknown", func(t *testing.T) {
		t.Parallel()

		doc, err := parser.Parse([]byte(`<rss version="2.0"><channel></channel></rss>`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if doc.Kind != KindUnknown {
			t.Errorf("Kind = %v, expected KindUnknown", doc.Kind)
		}
		if doc.RootName != "rss" {
			t.Errorf("RootName = %q, expected rss", doc.RootName)
		}
	})

	t.Run("loc outside its parent element is ignored", func(t *testing.T) {
		t.Parallel()

		data := `<urlset>
  <loc>https://example.com/stray</loc>
  <url><loc>https://example.com/ok</loc></url>
</urlset>`

		doc, err := parser.Parse([]byte(data))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(doc.Locations) != 1 || doc.Locations[0] != "https://example.com/ok" {
			t.Errorf("Locations = %v, expected only the nested entry", doc.Locations)
		}
	})

	t.Run("input with no elements returns ErrNoRootElement", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"", "   ", "plain text, not markup"} {
			if _, err := parser.Parse([]byte(input)); !errors.Is(err, ErrNoRootElement) {
				t.Errorf("Parse(%q): expected ErrNoRootElement, got %v", input, err)
			}
		}
	})
}

// TestParserStrict tests strict XML parsing and namespace handling.
func TestParserStrict(t *testing.T) {
	t.Parallel()

	parser := NewParser(false, testNamespaces())

	t.Run("parses a well-formed urlset", func(t *testing.T) {
		t.Parallel()

		data := `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc> https://example.com/news </loc></url>
</urlset>`

		doc, err := parser.Parse([]byte(data))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if doc.Kind != KindURLSet || len(doc.Locations) != 2 {
			t.Errorf("doc = %+v", doc)
		}
		if doc.Locations[1] != "https://example.com/news" {
			t.Errorf("Locations[1] = %q, expected trimmed URL", doc.Locations[1])
		}
	})

	t.Run("rejects malformed XML", func(t *testing.T) {
		t.Parallel()

		if _, err := parser.Parse([]byte(`<urlset><url><loc>x</loc></urlset>`)); err == nil {
			t.Error("expected a syntax error for mismatched tags")
		}
	})

	t.Run("ignores loc elements in unrecognized namespaces", func(t *testing.T) {
		t.Parallel()

		data := `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:v="http://www.google.com/schemas/sitemap-video/1.1">
  <url>
    <loc>https://example.com/watch</loc>
    <v:loc>https://example.com/video-metadata</v:loc>
  </url>
</urlset>`

		doc, err := parser.Parse([]byte(data))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(doc.Locations) != 1 || doc.Locations[0] != "https://example.com/watch" {
			t.Errorf("Locations = %v, expected only the sitemap-namespace entry", doc.Locations)
		}
	})

	t.Run("accepts documents without namespace declarations", func(t *testing.T) {
		t.Parallel()

		doc, err := parser.Parse([]byte(`<urlset><url><loc>https://example.com/</loc></url></urlset>`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if len(doc.Locations) != 1 {
			t.Errorf("Locations = %v", doc.Locations)
		}
	})
}
