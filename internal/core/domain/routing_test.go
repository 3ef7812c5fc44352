package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustedNormalisesToOne(t *testing.T) {
	weights := DefaultRoutingWeights()

	adjusted, enabled := weights.Adjusted(QueryAnalysis{})
	require.True(t, enabled)

	var sum float64
	for _, v := range adjusted {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Even weighting with no boosts splits evenly.
	for _, v := range adjusted {
		assert.InDelta(t, 0.25, v, 1e-9)
	}
}

func TestAdjustedRecencyBoost(t *testing.T) {
	weights := DefaultRoutingWeights()

	adjusted, enabled := weights.Adjusted(QueryAnalysis{RequiresRecentInfo: true})
	require.True(t, enabled)

	// Web search is boosted relative to the others, and the total still
	// sums to one.
	assert.Greater(t, adjusted[SourceWebSearch], adjusted[SourceKnowledgeBase])
	assert.InDelta(t, adjusted[SourceKnowledgeBase], adjusted[SourceConversation], 1e-9)

	var sum float64
	for _, v := range adjusted {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// 1.5 / (1 + 1.5 + 1 + 1)
	assert.InDelta(t, 1.5/4.5, adjusted[SourceWebSearch], 1e-9)
}

func TestAdjustedPersonalBoost(t *testing.T) {
	weights := DefaultRoutingWeights()

	adjusted, enabled := weights.Adjusted(QueryAnalysis{IsPersonal: true})
	require.True(t, enabled)

	assert.Greater(t, adjusted[SourceConversation], adjusted[SourceWebSearch])
	assert.InDelta(t, 1.5/4.5, adjusted[SourceConversation], 1e-9)
}

func TestAdjustedDisabledSourceIsZero(t *testing.T) {
	weights := DefaultRoutingWeights()
	weights.WebSearch.Enabled = false

	adjusted, enabled := weights.Adjusted(QueryAnalysis{RequiresRecentInfo: true})
	require.True(t, enabled)

	// A disabled source stays zero even when its boost applies.
	assert.Zero(t, adjusted[SourceWebSearch])

	var sum float64
	for _, v := range adjusted {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAdjustedAllDisabled(t *testing.T) {
	weights := RoutingWeights{}

	adjusted, enabled := weights.Adjusted(QueryAnalysis{})
	assert.False(t, enabled)
	for _, v := range adjusted {
		assert.Zero(t, v)
	}
}

func TestAdjustedNegativeWeightTreatedAsZero(t *testing.T) {
	weights := DefaultRoutingWeights()
	weights.KnowledgeBase.Weight = -2

	adjusted, enabled := weights.Adjusted(QueryAnalysis{})
	require.True(t, enabled)
	assert.Zero(t, adjusted[SourceKnowledgeBase])
}

func TestOrderedSources(t *testing.T) {
	t.Run("descending weight", func(t *testing.T) {
		order := OrderedSources(map[SourceKind]float64{
			SourceKnowledgeBase: 0.2,
			SourceWebSearch:     0.5,
			SourceConversation:  0.3,
		})
		assert.Equal(t, []SourceKind{SourceWebSearch, SourceConversation, SourceKnowledgeBase}, order)
	})

	t.Run("ties keep fixed order", func(t *testing.T) {
		order := OrderedSources(map[SourceKind]float64{
			SourceKnowledgeBase: 0.25,
			SourceWebSearch:     0.25,
			SourceConversation:  0.25,
			SourceRolePrompt:    0.25,
		})
		assert.Equal(t, []SourceKind{
			SourceKnowledgeBase,
			SourceWebSearch,
			SourceConversation,
			SourceRolePrompt,
		}, order)
	})

	t.Run("zero weight omitted", func(t *testing.T) {
		order := OrderedSources(map[SourceKind]float64{
			SourceKnowledgeBase: 0.6,
			SourceWebSearch:     0,
		})
		assert.Equal(t, []SourceKind{SourceKnowledgeBase}, order)
	})
}
