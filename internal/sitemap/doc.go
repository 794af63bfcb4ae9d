// Package sitemap resolves a sitemap tree into a deduplicated set of
// page URLs.
//
// # Architecture
//
// The package is designed around the Resolver type, which fetches a
// sitemap document, classifies it as a sitemap index or a URL set by
// the root element's local name, and recursively expands index entries
// depth-first. A visited set scoped to one Resolve call prevents
// infinite recursion on cyclic or self-referential indexes, and a
// defensive depth bound guards against pathologically deep trees.
//
// Resolution fails soft: a fetch or parse error on one sitemap node is
// logged and contributes zero URLs from that branch, never aborting the
// whole resolution.
//
// # Components
//
//   - Resolver: Coordinates fetching and recursive index expansion
//   - Document: One parsed sitemap with its kind and location entries
//   - URLSet: Deduplicated page URL collection preserving discovery order
//
// # Parsing
//
// Two parsing modes are supported. The default tolerant mode uses
// golang.org/x/net/html, which recovers a usable tree from malformed
// markup the way browsers do; real-world sitemaps are frequently
// truncated or hand-edited. Strict mode uses encoding/xml and honors
// the configured namespace map, rejecting location elements from
// unrecognized namespaces.
//
// # Usage
//
//	resolver := sitemap.NewResolver(httpClient, sitemap.WithUserAgent("bot/1.0"))
//	urls, err := resolver.Resolve(ctx, "https://example.com/sitemap.xml")
package sitemap
