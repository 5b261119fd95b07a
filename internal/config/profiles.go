package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kestrelworks/resolv/pkg/models"
)

// WorkerProfile describes one worker specialization the planner can
// assign: a human-readable specialization plus capability tags.
type WorkerProfile struct {
	Type           models.WorkerType `yaml:"type"`
	Specialization string            `yaml:"specialization"`
	Capabilities   []string          `yaml:"capabilities"`
}

type profileCatalog struct {
	Workers []WorkerProfile `yaml:"workers"`
}

// defaultProfiles is the built-in catalog, one profile per worker type
// in round-robin order.
var defaultProfiles = []WorkerProfile{
	{models.WorkerAnalyzer, "breaks the problem down and maps affected areas", []string{"decomposition", "impact-analysis", "triage"}},
	{models.WorkerImplementer, "writes the actual fix or feature code", []string{"coding", "debugging", "integration"}},
	{models.WorkerTester, "designs and writes tests around the change", []string{"unit-testing", "regression", "edge-cases"}},
	{models.WorkerReviewer, "reviews proposals for correctness and style", []string{"code-review", "consistency", "readability"}},
	{models.WorkerCoordinator, "keeps the group aligned on one approach", []string{"facilitation", "conflict-resolution", "planning"}},
	{models.WorkerOptimizer, "finds cheaper or faster ways to do the same work", []string{"profiling", "refactoring", "efficiency"}},
	{models.WorkerValidator, "checks the result against the original request", []string{"acceptance", "verification", "completeness"}},
	{models.WorkerDocumenter, "captures decisions and writes user-facing docs", []string{"documentation", "examples", "changelogs"}},
	{models.WorkerSecuritySpecialist, "audits the change for security exposure", []string{"threat-modeling", "auth", "input-validation"}},
	{models.WorkerPerformanceExpert, "watches latency and resource budgets", []string{"benchmarking", "caching", "scalability"}},
}

// LoadWorkerProfiles returns the worker-specialization catalog. A
// non-empty path loads YAML overrides merged over the defaults by
// worker type; unknown types in the file are rejected.
func LoadWorkerProfiles(path string) ([]WorkerProfile, error) {
	profiles := make([]WorkerProfile, len(defaultProfiles))
	copy(profiles, defaultProfiles)
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading worker profiles: %w", err)
	}
	var catalog profileCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing worker profiles: %w", err)
	}

	byType := make(map[models.WorkerType]int, len(profiles))
	for i, p := range profiles {
		byType[p.Type] = i
	}
	for _, override := range catalog.Workers {
		idx, ok := byType[override.Type]
		if !ok {
			return nil, fmt.Errorf("unknown worker type %q in %s", override.Type, path)
		}
		if override.Specialization != "" {
			profiles[idx].Specialization = override.Specialization
		}
		if len(override.Capabilities) > 0 {
			profiles[idx].Capabilities = override.Capabilities
		}
	}
	return profiles, nil
}

// ProfileFor returns the profile for a worker type, falling back to a
// bare profile for unknown types.
func ProfileFor(profiles []WorkerProfile, t models.WorkerType) WorkerProfile {
	for _, p := range profiles {
		if p.Type == t {
			return p
		}
	}
	return WorkerProfile{Type: t, Specialization: string(t)}
}
