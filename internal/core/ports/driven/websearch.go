package driven

import "context"

// WebResult is one result from an external search provider.
type WebResult struct {
	// Title is the result title.
	Title string

	// URL is the result location.
	URL string

	// Snippet is the provider's text excerpt.
	Snippet string
}

// WebSearcher performs live external search. This is an optional
// service - when nil, the web_search source contributes nothing.
// Implementations must bound their own request timeouts; a slow
// provider degrades to no content, never a hung router.
type WebSearcher interface {
	// Search returns up to limit results for the query.
	Search(ctx context.Context, query string, limit int) ([]WebResult, error)
}
