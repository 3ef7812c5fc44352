package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// DefaultKeywordCount is the number of weighted keywords extracted
// from a query.
const DefaultKeywordCount = 8

// Category detectors. Each regex flags one query category; the final
// type is the highest-priority category that matched.
var (
	recentRe = regexp.MustCompile(`(?i)\b(today|tonight|yesterday|now|currently|latest|recent|breaking|news|this (?:week|month|year)|right now|up to date)\b`)

	calcRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*[-+*/^%]\s*\d+(?:\.\d+)?|\b(?:calculate|compute|how much is|how many|sum of|average of|percentage of|square root)\b)`)

	personalRe = regexp.MustCompile(`(?i)\b(i|me|my|mine|myself|we|our|us|you|your)\b`)

	comparisonRe = regexp.MustCompile(`(?i)\b(vs\.?|versus|compared? (?:to|with)|difference between|better than|worse than|pros and cons|which is (?:better|faster|cheaper))\b`)

	definitionRe = regexp.MustCompile(`(?i)\b(what (?:is|are)|define|definition of|meaning of|what does\b.*\bmean)\b`)

	procedureRe = regexp.MustCompile(`(?i)\b(how (?:to|do i|do you|can i|should i)|steps? (?:to|for)|guide (?:to|for)|tutorial|instructions? (?:to|for)|walk me through)\b`)
)

// stopwords excluded from keyword extraction.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "can": true, "do": true, "does": true,
	"for": true, "from": true, "has": true, "have": true, "how": true,
	"i": true, "if": true, "in": true, "is": true, "it": true, "its": true,
	"me": true, "my": true, "not": true, "of": true, "on": true, "or": true,
	"our": true, "so": true, "than": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "we": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"why": true, "will": true, "with": true, "would": true, "you": true,
	"your": true,
}

var wordRe = regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9'-]*`)

// Analyzer classifies raw queries. It holds no state beyond its
// configuration and is safe for concurrent use; identical input always
// yields identical output.
type Analyzer struct {
	keywordCount int
}

// NewAnalyzer creates a query analyzer. keywordCount bounds the number
// of extracted keywords; values below 1 fall back to the default.
func NewAnalyzer(keywordCount int) *Analyzer {
	if keywordCount < 1 {
		keywordCount = DefaultKeywordCount
	}
	return &Analyzer{keywordCount: keywordCount}
}

// Analyze classifies a query and extracts weighted keywords.
// An empty or whitespace-only query is rejected.
func (a *Analyzer) Analyze(query string) (domain.QueryAnalysis, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.QueryAnalysis{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	analysis := domain.QueryAnalysis{
		RequiresRecentInfo:  recentRe.MatchString(query),
		RequiresCalculation: calcRe.MatchString(query),
		IsPersonal:          personalRe.MatchString(query),
		IsComparison:        comparisonRe.MatchString(query),
		IsDefinition:        definitionRe.MatchString(query),
		IsProcedure:         procedureRe.MatchString(query),
	}

	analysis.Type = deriveType(analysis)
	analysis.Keywords = a.extractKeywords(query)
	analysis.Confidence = confidence(analysis)
	return analysis, nil
}

// deriveType picks the highest-priority matched category.
// Priority: calculation > definition > procedure > comparison >
// recent_info > personal > general.
func deriveType(a domain.QueryAnalysis) domain.QueryType {
	switch {
	case a.RequiresCalculation:
		return domain.QueryCalculation
	case a.IsDefinition:
		return domain.QueryDefinition
	case a.IsProcedure:
		return domain.QueryProcedure
	case a.IsComparison:
		return domain.QueryComparison
	case a.RequiresRecentInfo:
		return domain.QueryRecentInfo
	case a.IsPersonal:
		return domain.QueryPersonal
	default:
		return domain.QueryGeneral
	}
}

// extractKeywords returns the top weighted terms by frequency, with
// weights normalised so the strongest term has weight 1.0. Ties break
// alphabetically so the output is deterministic.
func (a *Analyzer) extractKeywords(query string) []domain.Keyword {
	counts := make(map[string]int)
	for _, token := range wordRe.FindAllString(query, -1) {
		term := strings.ToLower(token)
		if len(term) < 3 || stopwords[term] {
			continue
		}
		counts[term]++
	}
	if len(counts) == 0 {
		return nil
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	keywords := make([]domain.Keyword, 0, len(counts))
	for term, c := range counts {
		keywords = append(keywords, domain.Keyword{
			Term:   term,
			Weight: float64(c) / float64(maxCount),
		})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight != keywords[j].Weight {
			return keywords[i].Weight > keywords[j].Weight
		}
		return keywords[i].Term < keywords[j].Term
	})

	if len(keywords) > a.keywordCount {
		keywords = keywords[:a.keywordCount]
	}
	return keywords
}

// confidence combines the strongest keyword weight (40%), whether any
// category matched (30%), and whether the type is non-general (30%),
// capped at 1.0.
func confidence(a domain.QueryAnalysis) float64 {
	var maxKeyword float64
	if len(a.Keywords) > 0 {
		maxKeyword = a.Keywords[0].Weight
	}

	anyCategory := 0.0
	if a.RequiresRecentInfo || a.RequiresCalculation || a.IsPersonal ||
		a.IsComparison || a.IsDefinition || a.IsProcedure {
		anyCategory = 1.0
	}

	typed := 0.0
	if a.Type != domain.QueryGeneral {
		typed = 1.0
	}

	c := 0.4*maxKeyword + 0.3*anyCategory + 0.3*typed
	if c > 1.0 {
		c = 1.0
	}
	return c
}
