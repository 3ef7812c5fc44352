package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
	"github.com/custodia-labs/contexa/internal/logger"
)

// Ensure History implements the interface.
var _ driving.ConversationContext = (*History)(nil)

// DefaultContextWindow is the number of recent turns considered.
const DefaultContextWindow = 10

// Window bounds accepted by SetWindow.
const (
	MinContextWindow = 1
	MaxContextWindow = 20
)

// DefaultMaxHistoryTokens bounds the conversation portion of the
// context when the caller does not supply a budget.
const DefaultMaxHistoryTokens = 1000

// tokensPerWord approximates tokens from whitespace-separated words.
const tokensPerWord = 1.3

// followUpRe flags queries that lean on a previous answer.
var followUpRe = regexp.MustCompile(`(?i)^(and|also|what about|how about|why|then)\b|\b(it|that|this|those|they|them)\b`)

// History maintains a bounded, relevance-filtered view of conversation
// history. It reads persisted messages but never mutates them; every
// call derives a fresh transient view for the query.
type History struct {
	store    driven.MessageStore
	analyzer *Analyzer

	mu     sync.RWMutex
	window int
}

// NewHistory creates a conversation context manager with the default
// window size.
func NewHistory(store driven.MessageStore, analyzer *Analyzer) *History {
	return &History{
		store:    store,
		analyzer: analyzer,
		window:   DefaultContextWindow,
	}
}

// Window returns the current window size.
func (h *History) Window() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.window
}

// SetWindow updates the window size. Sizes outside [1, 20] are rejected
// and leave the existing window unchanged.
func (h *History) SetWindow(size int) error {
	if size < MinContextWindow || size > MaxContextWindow {
		return fmt.Errorf("%w: context window %d outside [%d, %d]",
			domain.ErrInvalidInput, size, MinContextWindow, MaxContextWindow)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.window = size
	return nil
}

// Context returns the messages accepted for the query, in chronological
// order, within the token budget. This is a relevance filter, not a raw
// truncation: a message is accepted when recency alone suffices for a
// recent-info query, when it shares a keyword with the query, or when
// it is an assistant message answering a detected follow-up.
func (h *History) Context(ctx context.Context, conversationID, query string, maxTokens int) ([]domain.Message, error) {
	if conversationID == "" || h.store == nil {
		return nil, nil
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxHistoryTokens
	}

	analysis, err := h.analyzer.Analyze(query)
	if err != nil {
		return nil, fmt.Errorf("analyze query: %w", err)
	}

	messages, err := h.store.GetRecentMessages(ctx, conversationID, h.Window())
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(messages) == 0 {
		return nil, nil
	}

	isFollowUp := followUpRe.MatchString(query)
	queryTerms := make(map[string]bool, len(analysis.Keywords))
	for _, kw := range analysis.Keywords {
		queryTerms[kw.Term] = true
	}

	// Messages arrive newest first. Accept in that order so the most
	// recent relevant turns win the budget, then restore chronology.
	var accepted []domain.Message
	budget := 0.0
	for _, msg := range messages {
		if !h.relevant(msg, analysis, queryTerms, isFollowUp) {
			continue
		}
		cost := estimateTokens(msg.Content)
		if budget+cost > float64(maxTokens) {
			break
		}
		budget += cost
		accepted = append(accepted, msg)
	}

	// Reverse back to chronological order.
	for i, j := 0, len(accepted)-1; i < j; i, j = i+1, j-1 {
		accepted[i], accepted[j] = accepted[j], accepted[i]
	}

	logger.Debug("History: accepted %d of %d messages (budget %d tokens)",
		len(accepted), len(messages), maxTokens)
	return accepted, nil
}

// relevant decides whether a message joins the context for this query.
func (h *History) relevant(msg domain.Message, analysis domain.QueryAnalysis, queryTerms map[string]bool, isFollowUp bool) bool {
	// When the query needs recent information, recency alone suffices:
	// everything inside the window qualifies.
	if analysis.RequiresRecentInfo {
		return true
	}

	if isFollowUp && msg.Role == domain.RoleAssistant {
		return true
	}

	return sharesKeyword(msg.Content, queryTerms)
}

func sharesKeyword(content string, queryTerms map[string]bool) bool {
	if len(queryTerms) == 0 {
		return false
	}
	for _, token := range wordRe.FindAllString(content, -1) {
		if queryTerms[strings.ToLower(token)] {
			return true
		}
	}
	return false
}

// estimateTokens approximates the token count of a message as
// word count times 1.3.
func estimateTokens(content string) float64 {
	return float64(len(strings.Fields(content))) * tokensPerWord
}
