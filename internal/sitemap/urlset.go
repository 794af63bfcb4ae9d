package sitemap

// URLSet is a deduplicated collection of page URLs that preserves
// first-discovery order.
//
// Design decision: We keep insertion order rather than exposing an
// unordered map because the crawl iterates this collection directly.
// Deterministic order makes runs reproducible and artifact diffs
// meaningful; first-discovery order additionally mirrors the sitemap
// author's intent.
type URLSet struct {
	seen  map[string]bool
	order []string
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]bool)}
}

// Add inserts a URL if it is not already present.
// Returns true if the URL was newly added.
func (s *URLSet) Add(url string) bool {
	if s.seen[url] {
		return false
	}
	s.seen[url] = true
	s.order = append(s.order, url)
	return true
}

// Contains reports whether the URL is in the set.
func (s *URLSet) Contains(url string) bool {
	return s.seen[url]
}

// Len returns the number of unique URLs in the set.
func (s *URLSet) Len() int {
	return len(s.order)
}

// URLs returns the URLs in first-discovery order. The returned slice is
// a copy; mutating it does not affect the set.
func (s *URLSet) URLs() []string {
	urls := make([]string, len(s.order))
	copy(urls, s.order)
	return urls
}
