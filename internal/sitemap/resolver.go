package sitemap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxBodySize limits how much of a sitemap response is read.
// Sitemaps are capped at 50MB uncompressed by the protocol; 10MB covers
// practically every real document while bounding memory use.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Resolver expands a sitemap tree into a deduplicated set of page URLs.
// It is safe to reuse across Resolve calls; the visited set lives in
// the traversal, not in the Resolver.
type Resolver struct {
	// client performs sitemap HTTP fetches. Its timeout bounds each
	// fetch; the Resolver does not add one of its own.
	client *http.Client

	// userAgent identifies the crawler in sitemap fetches.
	userAgent string

	// maxDepth bounds index recursion. The visited set already stops
	// cycles; this guards against pathologically deep legitimate trees.
	maxDepth int

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// parser turns fetched bytes into Documents.
	parser *Parser

	// logger receives the fail-soft warnings and errors.
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithUserAgent sets the User-Agent header for sitemap fetches.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// WithMaxDepth sets the recursion bound for sitemap indexes.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		r.maxDepth = depth
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(r *Resolver) {
		r.maxBodySize = size
	}
}

// WithTolerantParsing selects recovery parsing of malformed sitemaps.
// The namespaces map (prefix to URI) is honored in strict mode.
func WithTolerantParsing(tolerant bool, namespaces map[string]string) Option {
	return func(r *Resolver) {
		r.parser = NewParser(tolerant, namespaces)
	}
}

// WithLogger sets the logger for resolution progress and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver using the given HTTP client.
//
// Design decision: We require an external client because the caller
// owns transport policy (timeout, proxy, TLS) and because tests can
// inject a client pointed at httptest servers.
func NewResolver(client *http.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client:      client,
		userAgent:   "consolescan/1.0",
		maxDepth:    50,
		maxBodySize: DefaultMaxBodySize,
		parser:      NewParser(true, nil),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve fetches the seed sitemap and recursively expands any index
// entries, returning every unique, absolute, http(s)-scheme page URL
// discovered, in first-discovery order.
//
// Resolution fails soft: transport and parse problems on one sitemap
// node are logged and that branch contributes nothing. The only error
// returned is context cancellation, so a partial result is available
// even then.
func (r *Resolver) Resolve(ctx context.Context, seedURL string) (*URLSet, error) {
	visited := make(map[string]bool)
	pages := NewURLSet()

	err := r.resolve(ctx, seedURL, 0, visited, pages)
	return pages, err
}

// resolve handles one sitemap node. The visited set and page set are
// shared by reference across the whole traversal.
func (r *Resolver) resolve(ctx context.Context, sitemapURL string, depth int, visited map[string]bool, pages *URLSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if visited[sitemapURL] {
		r.logger.Warn("sitemap already visited, skipping", "url", sitemapURL)
		return nil
	}
	visited[sitemapURL] = true

	if depth > r.maxDepth {
		r.logger.Warn("sitemap recursion depth exceeded, skipping branch",
			"url", sitemapURL, "maxDepth", r.maxDepth)
		return nil
	}

	r.logger.Info("fetching sitemap", "url", sitemapURL)

	body, err := r.fetch(ctx, sitemapURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Error("failed to fetch sitemap", "url", sitemapURL, "error", err)
		return nil
	}

	if len(body) == 0 {
		r.logger.Warn("sitemap is empty", "url", sitemapURL)
		return nil
	}

	doc, err := r.parser.Parse(body)
	if err != nil {
		r.logger.Error("failed to parse sitemap", "url", sitemapURL, "error", err)
		return nil
	}

	switch doc.Kind {
	case KindIndex:
		r.logger.Info("detected sitemap index", "url", sitemapURL, "entries", len(doc.Locations))
		base, err := url.Parse(sitemapURL)
		if err != nil {
			r.logger.Error("invalid sitemap URL", "url", sitemapURL, "error", err)
			return nil
		}
		for _, loc := range doc.Locations {
			if loc == "" {
				r.logger.Warn("skipping empty sitemap entry", "sitemap", sitemapURL)
				continue
			}
			// Index entries may be relative; resolve them against the
			// containing document's URL before recursing.
			sub, err := base.Parse(loc)
			if err != nil {
				r.logger.Warn("skipping unparsable sitemap entry", "sitemap", sitemapURL, "entry", loc)
				continue
			}
			if err := r.resolve(ctx, sub.String(), depth+1, visited, pages); err != nil {
				return err
			}
		}

	case KindURLSet:
		r.logger.Info("detected URL set", "url", sitemapURL, "entries", len(doc.Locations))
		for _, loc := range doc.Locations {
			if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
				r.logger.Warn("skipping invalid or relative URL in sitemap",
					"sitemap", sitemapURL, "entry", loc)
				continue
			}
			pages.Add(loc)
		}

	default:
		r.logger.Warn("unknown sitemap root element",
			"url", sitemapURL, "root", doc.RootName)
	}

	return nil
}

// fetch retrieves one sitemap's bytes with the identifying User-Agent.
func (r *Resolver) fetch(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, r.maxBodySize))
}
