package models

// ComplexityTier buckets a complexity score into coarse tiers.
type ComplexityTier string

const (
	TierLow      ComplexityTier = "low"
	TierMedium   ComplexityTier = "medium"
	TierHigh     ComplexityTier = "high"
	TierVeryHigh ComplexityTier = "very-high"
)

// Valid returns true if the tier is a known value.
func (t ComplexityTier) Valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh, TierVeryHigh:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal position of the tier, low first.
func (t ComplexityTier) Rank() int {
	switch t {
	case TierLow:
		return 0
	case TierMedium:
		return 1
	case TierHigh:
		return 2
	case TierVeryHigh:
		return 3
	default:
		return 0
	}
}

// Sentiment is the coarse sentiment classification of task text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Intent is the coarse intent classification of a task. The set is closed.
type Intent string

const (
	IntentQuestion       Intent = "question"
	IntentFeatureRequest Intent = "feature-request"
	IntentBugReport      Intent = "bug-report"
	IntentEnhancement    Intent = "enhancement"
	IntentDocumentation  Intent = "documentation"
	IntentGeneral        Intent = "general"
)

// KeyTerm is a term extracted from task text with its frequency.
type KeyTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Entities holds structured tokens extracted from task text.
type Entities struct {
	// URLs are web links found in the text.
	URLs []string `json:"urls,omitempty"`
	// Files are file-like tokens (paths, names with extensions).
	Files []string `json:"files,omitempty"`
	// References are cross-reference tokens such as #123.
	References []string `json:"references,omitempty"`
}

// RiskSeverity grades an identified risk.
type RiskSeverity string

const (
	RiskLow    RiskSeverity = "low"
	RiskMedium RiskSeverity = "medium"
	RiskHigh   RiskSeverity = "high"
)

// Risk is a potential hazard detected during analysis.
type Risk struct {
	// Type names the risk category, e.g. "data-loss" or "service-disruption".
	Type string `json:"type"`
	// Severity grades the risk.
	Severity RiskSeverity `json:"severity"`
	// Mitigation is a suggested countermeasure.
	Mitigation string `json:"mitigation"`
}

// PatternMatch pairs a stored pattern with its computed similarity for
// one analysis. Similarity is always in (0.7, 1.0] for returned matches.
type PatternMatch struct {
	// Pattern is the matched stored pattern.
	Pattern Pattern `json:"pattern"`
	// Similarity is the weighted similarity score in [0,1].
	Similarity float64 `json:"similarity"`
	// Confidence is similarity weighted by the pattern's success rate.
	Confidence float64 `json:"confidence"`
}

// Analysis is the derived, immutable snapshot produced once per session.
// It is a pure function of the task and the knowledge store contents at
// analysis time, and is read-only input to every later stage.
type Analysis struct {
	// TaskID references the analyzed task.
	TaskID string `json:"task_id"`
	// KeyTerms are the top terms by frequency, descending, at most 20.
	KeyTerms []KeyTerm `json:"key_terms,omitempty"`
	// Sentiment is the coarse text sentiment.
	Sentiment Sentiment `json:"sentiment"`
	// Entities are structured tokens found in the text.
	Entities Entities `json:"entities"`
	// Intent is the classified task intent.
	Intent Intent `json:"intent"`
	// Complexity is the weighted complexity score in [0,1].
	Complexity float64 `json:"complexity"`
	// Tier is the complexity tier derived from Complexity.
	Tier ComplexityTier `json:"tier"`
	// Domain is the classified domain tag, "general" when nothing matches.
	Domain string `json:"domain"`
	// Priority is the priority score in [0,1].
	Priority float64 `json:"priority"`
	// Patterns are historical matches sorted descending by Confidence.
	Patterns []PatternMatch `json:"patterns,omitempty"`
	// Approaches are candidate solution-approach tags, ranked.
	Approaches []string `json:"approaches,omitempty"`
	// Risks are the detected risks.
	Risks []Risk `json:"risks,omitempty"`
}
