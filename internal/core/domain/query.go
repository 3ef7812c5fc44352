package domain

// QueryType classifies a user query for routing decisions.
type QueryType string

const (
	// QueryCalculation is an arithmetic or computational query.
	QueryCalculation QueryType = "calculation"

	// QueryDefinition asks what something is or means.
	QueryDefinition QueryType = "definition"

	// QueryProcedure asks how to do something.
	QueryProcedure QueryType = "procedure"

	// QueryComparison asks to compare alternatives.
	QueryComparison QueryType = "comparison"

	// QueryRecentInfo needs current or time-sensitive information.
	QueryRecentInfo QueryType = "recent_info"

	// QueryPersonal refers to the user or prior conversation.
	QueryPersonal QueryType = "personal"

	// QueryGeneral is the fallback classification.
	QueryGeneral QueryType = "general"
)

// Keyword is an extracted query term with a relative weight in (0, 1].
type Keyword struct {
	// Term is the lowercased keyword.
	Term string

	// Weight is the term's relative importance, 1.0 for the strongest term.
	Weight float64
}

// QueryAnalysis is the result of classifying a raw query.
// It is a pure function of the query text.
type QueryAnalysis struct {
	// Type is the highest-priority category that matched.
	Type QueryType

	// RequiresRecentInfo is true when the query references current events
	// or time-sensitive information.
	RequiresRecentInfo bool

	// RequiresCalculation is true for arithmetic queries.
	RequiresCalculation bool

	// IsPersonal is true when the query references the user or the
	// ongoing conversation.
	IsPersonal bool

	// IsComparison is true for comparison queries.
	IsComparison bool

	// IsDefinition is true for definition queries.
	IsDefinition bool

	// IsProcedure is true for how-to queries.
	IsProcedure bool

	// Keywords are the top weighted terms extracted from the query.
	Keywords []Keyword

	// Confidence is the classifier's confidence in [0, 1].
	Confidence float64
}
