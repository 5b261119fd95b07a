package models

import "time"

// Pattern is a reusable problem signature paired with an approach that
// worked for it historically. Patterns are written only by the learning
// integrator (append or overwrite by ID) and read during analysis.
type Pattern struct {
	// ID is the unique pattern identifier.
	ID string `json:"id"`
	// Domain is the domain tag the pattern was learned in.
	Domain string `json:"domain"`
	// Tier is the complexity tier of the originating sessions.
	Tier ComplexityTier `json:"tier"`
	// KeyTerms are the top key terms of the originating analysis.
	KeyTerms []string `json:"key_terms,omitempty"`
	// Category is the intent category the pattern applies to.
	Category string `json:"category"`
	// Approach is the solution-approach label that succeeded.
	Approach string `json:"approach"`
	// SuccessRate is the observed success rate in [0,1].
	SuccessRate float64 `json:"success_rate"`
	// Uses counts how many sessions contributed to SuccessRate.
	Uses int `json:"uses"`
	// CreatedAt is when the pattern was first stored.
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeRecord is a domain-tagged fact linking a solution approach to
// an observed effectiveness score. Same ownership rules as Pattern.
type KnowledgeRecord struct {
	// ID is the unique record identifier.
	ID string `json:"id"`
	// Domain is the domain tag.
	Domain string `json:"domain"`
	// Approach is the solution-approach label.
	Approach string `json:"approach"`
	// Effectiveness is the observed effectiveness in [0,1].
	Effectiveness float64 `json:"effectiveness"`
	// Detail is an optional human-readable note.
	Detail string `json:"detail,omitempty"`
	// CreatedAt is when the record was stored.
	CreatedAt time.Time `json:"created_at"`
}
