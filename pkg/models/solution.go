package models

// ArtifactKind distinguishes the members of a candidate's artifact triple.
type ArtifactKind string

const (
	ArtifactImplementation ArtifactKind = "implementation"
	ArtifactTest           ArtifactKind = "test"
	ArtifactDocumentation  ArtifactKind = "documentation"
)

// Artifact is a named content blob attached to a candidate solution.
type Artifact struct {
	// Name is the artifact file name.
	Name string `json:"name"`
	// Kind classifies the artifact.
	Kind ArtifactKind `json:"kind"`
	// Content is the opaque artifact body.
	Content string `json:"content"`
}

// CandidateSolution is one synthesized proposal. Immutable once created.
type CandidateSolution struct {
	// ID is the unique candidate identifier.
	ID string `json:"id"`
	// Approach is the distinct approach label for this candidate.
	Approach string `json:"approach"`
	// Steps is the ordered implementation outline.
	Steps []string `json:"steps"`
	// Artifacts is the artifact set for this candidate.
	Artifacts []Artifact `json:"artifacts"`
	// EstimatedEffort is the bounded effort estimate in hours.
	EstimatedEffort int `json:"estimated_effort"`
}

// ArtifactCount returns the number of artifacts on the candidate.
func (c *CandidateSolution) ArtifactCount() int {
	return len(c.Artifacts)
}

// QualityDimension names one axis of the assessment vector.
type QualityDimension string

const (
	DimCompleteness    QualityDimension = "completeness"
	DimCorrectness     QualityDimension = "correctness"
	DimMaintainability QualityDimension = "maintainability"
	DimPerformance     QualityDimension = "performance"
	DimSecurity        QualityDimension = "security"
	DimTestability     QualityDimension = "testability"
	DimDocumentation   QualityDimension = "documentation-quality"
)

// QualityDimensions is the fixed set of assessed dimensions, in the
// order they are reported.
var QualityDimensions = []QualityDimension{
	DimCompleteness,
	DimCorrectness,
	DimMaintainability,
	DimPerformance,
	DimSecurity,
	DimTestability,
	DimDocumentation,
}

// Assessment is the multi-dimensional quality score attached to exactly
// one candidate solution.
type Assessment struct {
	// CandidateID references the assessed candidate.
	CandidateID string `json:"candidate_id"`
	// Dimensions maps each quality dimension to a score in [0,1].
	Dimensions map[QualityDimension]float64 `json:"dimensions"`
	// Score is the arithmetic mean of all dimensions.
	Score float64 `json:"score"`
	// Recommendations are improvement notes for dimensions below threshold.
	Recommendations []string `json:"recommendations,omitempty"`
}

// Dimension returns the score for a dimension, 0 when absent.
func (a *Assessment) Dimension(d QualityDimension) float64 {
	if a == nil || a.Dimensions == nil {
		return 0
	}
	return a.Dimensions[d]
}
