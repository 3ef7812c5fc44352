package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
	"github.com/custodia-labs/contexa/internal/logger"
)

// Ensure Router implements the interface.
var _ driving.RouterService = (*Router)(nil)

// DefaultSourceTimeout bounds each source fetch so a slow source
// degrades to no content instead of stalling composition.
const DefaultSourceTimeout = 10 * time.Second

// DefaultWebResults is the number of web results requested per query.
const DefaultWebResults = 5

// Source headers used when composing the final context.
var sourceHeaders = map[domain.SourceKind]string{
	domain.SourceKnowledgeBase: "[Knowledge Base]",
	domain.SourceWebSearch:     "[Web Search]",
	domain.SourceConversation:  "[Conversation]",
}

// RouterConfig carries the router's tunable settings.
type RouterConfig struct {
	// SourceTimeout bounds each individual source fetch.
	SourceTimeout time.Duration

	// WebResults is the number of web results requested.
	WebResults int

	// Retrieval is the default retrieval options for the knowledge
	// base source.
	Retrieval domain.RetrievalOptions
}

// Router is the composition root of the query-time path. It consumes
// the query analysis, persona weights and the configured sources, and
// emits one normalised textual context.
type Router struct {
	analyzer  *Analyzer
	retriever driving.RetrievalService
	history   driving.ConversationContext
	webSearch driven.WebSearcher
	cfg       RouterConfig
}

// NewRouter creates a response router. retriever, history and webSearch
// are each optional; a nil source simply never contributes.
func NewRouter(
	analyzer *Analyzer,
	retriever driving.RetrievalService,
	history driving.ConversationContext,
	webSearch driven.WebSearcher,
	cfg RouterConfig,
) *Router {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	if cfg.WebResults <= 0 {
		cfg.WebResults = DefaultWebResults
	}
	return &Router{
		analyzer:  analyzer,
		retriever: retriever,
		history:   history,
		webSearch: webSearch,
		cfg:       cfg,
	}
}

// Compose classifies the query, adjusts the persona weights, fetches
// every weighted source in parallel and concatenates the results in
// descending weight order. All sources empty or disabled yields an
// empty context, not an error.
func (r *Router) Compose(ctx context.Context, req driving.ComposeRequest) (*driving.ComposeResult, error) {
	logger.Section("Context Composition")

	analysis, err := r.analyzer.Analyze(req.Query)
	if err != nil {
		return nil, err
	}
	logger.Debug("Query type: %s (confidence %.2f)", analysis.Type, analysis.Confidence)

	weights, enabled := req.Weights.Adjusted(analysis)
	if !enabled {
		logger.Info("All sources disabled, role prompt only")
		return &driving.ComposeResult{Analysis: analysis}, nil
	}
	logger.Debug("Adjusted weights: %v", weights)

	contents := r.fetchSources(ctx, req, analysis, weights)

	var b strings.Builder
	var used []string
	for _, kind := range domain.OrderedSources(weights) {
		content, ok := contents[kind]
		if !ok || content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sourceHeaders[kind])
		b.WriteString("\n")
		b.WriteString(content)
		used = append(used, string(kind))
	}

	logger.Info("Composed context from %d sources", len(used))
	return &driving.ComposeResult{
		Context:     b.String(),
		SourcesUsed: used,
		Analysis:    analysis,
	}, nil
}

// fetchSources gathers content from every weighted source in parallel.
// Each fetch runs under its own timeout; a failure or timeout is logged
// and treated as zero contribution from that source.
func (r *Router) fetchSources(
	ctx context.Context,
	req driving.ComposeRequest,
	analysis domain.QueryAnalysis,
	weights map[domain.SourceKind]float64,
) map[domain.SourceKind]string {
	type fetched struct {
		kind    domain.SourceKind
		content string
	}

	fetchers := map[domain.SourceKind]func(context.Context) (string, error){
		domain.SourceKnowledgeBase: func(ctx context.Context) (string, error) {
			return r.fetchKnowledge(ctx, req)
		},
		domain.SourceWebSearch: func(ctx context.Context) (string, error) {
			return r.fetchWeb(ctx, req.Query)
		},
		domain.SourceConversation: func(ctx context.Context) (string, error) {
			return r.fetchConversation(ctx, req)
		},
	}

	results := make(chan fetched, len(fetchers))
	var wg sync.WaitGroup
	for kind, fetch := range fetchers {
		if weights[kind] <= 0 {
			continue
		}
		wg.Add(1)
		go func(kind domain.SourceKind, fetch func(context.Context) (string, error)) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout)
			defer cancel()

			content, err := fetch(fetchCtx)
			if err != nil {
				logger.Warn("Source %s unavailable: %v", kind, err)
				return
			}
			results <- fetched{kind: kind, content: content}
		}(kind, fetch)
	}
	wg.Wait()
	close(results)

	contents := make(map[domain.SourceKind]string)
	for f := range results {
		contents[f.kind] = f.content
	}
	return contents
}

func (r *Router) fetchKnowledge(ctx context.Context, req driving.ComposeRequest) (string, error) {
	if r.retriever == nil {
		return "", nil
	}

	opts := r.cfg.Retrieval
	if req.KnowledgeBaseID != "" {
		filters := make(map[string]string, len(opts.Filters)+1)
		for k, v := range opts.Filters {
			filters[k] = v
		}
		filters["knowledge_base_id"] = req.KnowledgeBaseID
		opts.Filters = filters
	}

	results, err := r.retriever.Retrieve(ctx, req.Query, opts)
	if err != nil {
		return "", fmt.Errorf("%w: knowledge base: %w", domain.ErrSourceUnavailable, err)
	}

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(res.Content)
	}
	return b.String(), nil
}

func (r *Router) fetchWeb(ctx context.Context, query string) (string, error) {
	if r.webSearch == nil {
		return "", nil
	}

	results, err := r.webSearch.Search(ctx, query, r.cfg.WebResults)
	if err != nil {
		return "", fmt.Errorf("%w: web search: %w", domain.ErrSourceUnavailable, err)
	}

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(res.Title)
		if res.Snippet != "" {
			b.WriteString(": ")
			b.WriteString(res.Snippet)
		}
	}
	return b.String(), nil
}

func (r *Router) fetchConversation(ctx context.Context, req driving.ComposeRequest) (string, error) {
	if r.history == nil || req.ConversationID == "" {
		return "", nil
	}

	messages, err := r.history.Context(ctx, req.ConversationID, req.Query, req.MaxHistoryTokens)
	if err != nil {
		return "", fmt.Errorf("%w: conversation: %w", domain.ErrSourceUnavailable, err)
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String(), nil
}
