package models

// WorkerType is the declared specialization of a worker.
type WorkerType string

const (
	WorkerAnalyzer           WorkerType = "analyzer"
	WorkerImplementer        WorkerType = "implementer"
	WorkerTester             WorkerType = "tester"
	WorkerReviewer           WorkerType = "reviewer"
	WorkerCoordinator        WorkerType = "coordinator"
	WorkerOptimizer          WorkerType = "optimizer"
	WorkerValidator          WorkerType = "validator"
	WorkerDocumenter         WorkerType = "documenter"
	WorkerSecuritySpecialist WorkerType = "security-specialist"
	WorkerPerformanceExpert  WorkerType = "performance-expert"
)

// WorkerTypes is the fixed ordered specialization vocabulary. Planner
// assignment walks this slice round-robin.
var WorkerTypes = []WorkerType{
	WorkerAnalyzer,
	WorkerImplementer,
	WorkerTester,
	WorkerReviewer,
	WorkerCoordinator,
	WorkerOptimizer,
	WorkerValidator,
	WorkerDocumenter,
	WorkerSecuritySpecialist,
	WorkerPerformanceExpert,
}

// Worker is an ephemeral cooperating unit spawned for one session.
// Workers are created at session start and discarded at session end;
// only aggregate counts are ever persisted.
type Worker struct {
	// ID is the unique worker identifier.
	ID string `json:"id"`
	// Type is the declared specialization.
	Type WorkerType `json:"type"`
	// Specialization is the human-readable specialization description.
	Specialization string `json:"specialization"`
	// Capabilities are capability tags for this worker type.
	Capabilities []string `json:"capabilities,omitempty"`
	// KnowledgeIDs reference knowledge records relevant to this worker.
	KnowledgeIDs []string `json:"knowledge_ids,omitempty"`
	// Quality is the running per-worker quality metric in [0,1].
	Quality float64 `json:"quality"`
}

// WorkerPlan is the planner's worker-allocation output for one session.
type WorkerPlan struct {
	// Workers are the planned workers in assignment order.
	Workers []*Worker `json:"workers"`
	// RecommendedCount is the tier-recommended worker count before clamping.
	RecommendedCount int `json:"recommended_count"`
	// ExpectedOutcome is the advisory success-confidence prediction,
	// capped at 1.0. It never gates execution.
	ExpectedOutcome float64 `json:"expected_outcome"`
}
