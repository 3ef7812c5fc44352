// Package searx provides a web search adapter backed by a SearXNG
// instance's JSON API.
package searx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/contexa/internal/core/ports/driven"
)

// Ensure Searcher implements the interface.
var _ driven.WebSearcher = (*Searcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerSecond keeps a self-hosted instance from being
	// hammered during batch operations.
	DefaultRequestsPerSecond = 2
)

// Config holds configuration for the SearXNG searcher.
type Config struct {
	// BaseURL is the SearXNG instance URL (required).
	BaseURL string

	// Timeout is the request timeout (default: 10s).
	Timeout time.Duration

	// RequestsPerSecond caps the request rate (default: 2).
	RequestsPerSecond float64
}

// Searcher performs web searches against a SearXNG instance.
type Searcher struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// searchResponse is the SearXNG JSON API response format.
type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// NewSearcher creates a new SearXNG searcher.
func NewSearcher(cfg Config) (*Searcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("searx: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Searcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Search returns up to limit results for the query.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]driven.WebResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("searx: rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("searx: create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searx: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("searx error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("searx error (status %d): %s", resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("searx: decode response: %w", err)
	}

	results := make([]driven.WebResult, 0, limit)
	for _, r := range searchResp.Results {
		if len(results) >= limit {
			break
		}
		results = append(results, driven.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}
	return results, nil
}
