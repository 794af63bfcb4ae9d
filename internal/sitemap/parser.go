package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Kind classifies a sitemap document by its root element's local name.
type Kind int

const (
	// KindUnknown means the root element was neither a sitemap index
	// nor a URL set. The branch yields no URLs.
	KindUnknown Kind = iota

	// KindIndex is a <sitemapindex> document listing other sitemaps.
	KindIndex

	// KindURLSet is a <urlset> document listing page URLs directly.
	KindURLSet
)

// Document is one parsed sitemap. It is ephemeral: the resolver builds
// it from fetched bytes, extracts the location entries, and discards it.
type Document struct {
	// Kind is the document classification derived from RootName.
	Kind Kind

	// RootName is the namespace-stripped local name of the root
	// element, kept for warning messages about unknown formats.
	RootName string

	// Locations holds the whitespace-trimmed text of every extracted
	// <loc> element, in document order. Entries may be empty or
	// relative; validation is the resolver's job so that rejects can
	// be logged with their source sitemap.
	Locations []string
}

// ErrNoRootElement is returned when parsing yields no usable root node,
// for example on an empty response body.
var ErrNoRootElement = errors.New("no usable root element found")

// Parser turns fetched sitemap bytes into a Document.
//
// Design decision: Tolerant mode parses with golang.org/x/net/html
// rather than encoding/xml because the HTML parser recovers a usable
// tree from malformed markup -- unclosed tags, stray bytes, truncated
// documents -- the way browsers do, and real-world sitemaps are often
// served slightly broken. Element names survive intact (lowercased,
// which sitemap element names already are), so root classification and
// location extraction work the same in both modes.
type Parser struct {
	// tolerant selects recovery parsing instead of strict XML.
	tolerant bool

	// acceptedNamespaces holds the namespace URIs from the configured
	// prefix map. In strict mode, location elements in a namespace
	// outside this set are ignored; elements without a namespace are
	// always accepted.
	acceptedNamespaces map[string]bool
}

// NewParser creates a Parser. The namespaces map uses configuration
// prefixes as keys and namespace URIs as values; only the URIs matter
// for matching, since document prefixes need not agree with configured
// prefixes.
func NewParser(tolerant bool, namespaces map[string]string) *Parser {
	accepted := make(map[string]bool, len(namespaces))
	for _, uri := range namespaces {
		accepted[uri] = true
	}
	return &Parser{tolerant: tolerant, acceptedNamespaces: accepted}
}

// Parse parses sitemap bytes into a Document.
// In tolerant mode almost any input yields a tree; inputs with no
// recognizable element at all return ErrNoRootElement. In strict mode
// malformed XML returns the decoder's syntax error.
func (p *Parser) Parse(data []byte) (*Document, error) {
	if p.tolerant {
		return p.parseTolerant(data)
	}
	return p.parseStrict(data)
}

// parseTolerant recovers a Document from possibly malformed markup.
func (p *Parser) parseTolerant(data []byte) (*Document, error) {
	tree, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		// html.Parse only fails on reader errors, but handle it anyway.
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	root := findSitemapRoot(tree)
	if root == nil {
		return nil, ErrNoRootElement
	}

	doc := &Document{RootName: localName(root.Data), Kind: kindOf(localName(root.Data))}

	// Location entries only count inside their expected parent, so a
	// stray <loc> at the top level of a broken document is not treated
	// as a page URL.
	parent := ""
	switch doc.Kind {
	case KindIndex:
		parent = "sitemap"
	case KindURLSet:
		parent = "url"
	default:
		return doc, nil
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && localName(n.Data) == "loc" &&
			n.Parent != nil && n.Parent.Type == html.ElementNode && localName(n.Parent.Data) == parent {
			doc.Locations = append(doc.Locations, strings.TrimSpace(textContent(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

// findSitemapRoot locates the document's real root element, skipping
// the <html><head><body> wrappers the recovery parser inserts around
// non-HTML input.
func findSitemapRoot(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		switch localName(n.Data) {
		case "html", "head", "body":
			// Wrapper; keep descending.
		default:
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSitemapRoot(c); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates the direct and nested text of a node.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// parseStrict decodes well-formed XML, honoring the namespace map.
func (p *Parser) parseStrict(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	doc := &Document{}
	var stack []xml.Name
	var inLoc bool
	var loc strings.Builder

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sitemap XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				doc.RootName = t.Name.Local
				doc.Kind = kindOf(t.Name.Local)
			}
			if len(stack) >= 1 && t.Name.Local == "loc" && p.namespaceAccepted(t.Name.Space) {
				parent := stack[len(stack)-1].Local
				if (doc.Kind == KindIndex && parent == "sitemap") || (doc.Kind == KindURLSet && parent == "url") {
					inLoc = true
					loc.Reset()
				}
			}
			stack = append(stack, t.Name)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if inLoc && t.Name.Local == "loc" {
				doc.Locations = append(doc.Locations, strings.TrimSpace(loc.String()))
				inLoc = false
			}
		case xml.CharData:
			if inLoc {
				loc.Write(t)
			}
		}
	}

	if doc.RootName == "" {
		return nil, ErrNoRootElement
	}

	return doc, nil
}

// namespaceAccepted reports whether a location element's namespace URI
// is recognized. Documents without namespace declarations are accepted;
// requiring one would reject many hand-written sitemaps.
func (p *Parser) namespaceAccepted(uri string) bool {
	return uri == "" || p.acceptedNamespaces[uri]
}

// kindOf classifies a root element's local name.
func kindOf(name string) Kind {
	switch name {
	case "sitemapindex":
		return KindIndex
	case "urlset":
		return KindURLSet
	default:
		return KindUnknown
	}
}

// localName strips any namespace prefix from an element name, so
// "s:loc" and "loc" compare equal.
func localName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}
