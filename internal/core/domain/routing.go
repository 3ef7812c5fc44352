package domain

import "sort"

// SourceKind identifies a context source the router can draw from.
type SourceKind string

const (
	// SourceKnowledgeBase is semantic retrieval over indexed documents.
	SourceKnowledgeBase SourceKind = "knowledge_base"

	// SourceWebSearch is live external search.
	SourceWebSearch SourceKind = "web_search"

	// SourceConversation is filtered prior conversation history.
	SourceConversation SourceKind = "conversation"

	// SourceRolePrompt is the persona's own prompt text.
	SourceRolePrompt SourceKind = "role_prompt"
)

// Boost multipliers applied during weight adjustment. These are tunable
// parameters, not load-bearing constants.
const (
	// RecencyBoost multiplies the web search weight when the query
	// requires recent information.
	RecencyBoost = 1.5

	// PersonalBoost multiplies the conversation weight when the query
	// is personal.
	PersonalBoost = 1.5
)

// SourceWeight is a per-source routing configuration entry.
type SourceWeight struct {
	// Enabled gates whether the source contributes at all.
	Enabled bool

	// Weight is the source's base contribution before adjustment.
	Weight float64
}

// RoutingWeights is the per-persona source weighting configuration.
// It is owned by persona configuration; the engine only reads it.
type RoutingWeights struct {
	KnowledgeBase SourceWeight
	WebSearch     SourceWeight
	Conversation  SourceWeight
	RolePrompt    SourceWeight
}

// DefaultRoutingWeights returns an even weighting with all sources enabled.
func DefaultRoutingWeights() RoutingWeights {
	return RoutingWeights{
		KnowledgeBase: SourceWeight{Enabled: true, Weight: 1.0},
		WebSearch:     SourceWeight{Enabled: true, Weight: 1.0},
		Conversation:  SourceWeight{Enabled: true, Weight: 1.0},
		RolePrompt:    SourceWeight{Enabled: true, Weight: 1.0},
	}
}

// Adjusted applies query-driven boosts and renormalises the weights.
// Disabled sources are zeroed. The web search weight is boosted when the
// query requires recent information; the conversation weight is boosted
// when the query is personal. The remaining weights are scaled to sum
// to 1.0. The second return value is false when every source is disabled
// or zero, in which case the caller should fall back to the role prompt
// alone.
func (w RoutingWeights) Adjusted(a QueryAnalysis) (map[SourceKind]float64, bool) {
	adjusted := map[SourceKind]float64{
		SourceKnowledgeBase: enabledWeight(w.KnowledgeBase),
		SourceWebSearch:     enabledWeight(w.WebSearch),
		SourceConversation:  enabledWeight(w.Conversation),
		SourceRolePrompt:    enabledWeight(w.RolePrompt),
	}

	if a.RequiresRecentInfo {
		adjusted[SourceWebSearch] *= RecencyBoost
	}
	if a.IsPersonal {
		adjusted[SourceConversation] *= PersonalBoost
	}

	var sum float64
	for _, v := range adjusted {
		sum += v
	}
	if sum == 0 {
		return adjusted, false
	}

	for k, v := range adjusted {
		adjusted[k] = v / sum
	}
	return adjusted, true
}

// OrderedSources returns source kinds sorted by descending weight.
// Zero-weight sources are omitted. Ties break on a fixed kind order so
// composition is deterministic.
func OrderedSources(weights map[SourceKind]float64) []SourceKind {
	fixed := []SourceKind{
		SourceKnowledgeBase,
		SourceWebSearch,
		SourceConversation,
		SourceRolePrompt,
	}

	kinds := make([]SourceKind, 0, len(fixed))
	for _, k := range fixed {
		if weights[k] > 0 {
			kinds = append(kinds, k)
		}
	}

	sort.SliceStable(kinds, func(i, j int) bool {
		return weights[kinds[i]] > weights[kinds[j]]
	})
	return kinds
}

func enabledWeight(s SourceWeight) float64 {
	if !s.Enabled || s.Weight < 0 {
		return 0
	}
	return s.Weight
}
