package swarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelworks/resolv/pkg/models"
)

// typeTemplates drives the deterministic per-type individual analysis.
// Findings are phrased against the session domain and tier at runtime.
var typeTemplates = map[models.WorkerType]struct {
	findings        []string
	recommendations []string
}{
	models.WorkerAnalyzer: {
		findings:        []string{"the %s issue decomposes into isolated sub-problems", "complexity sits at tier %s"},
		recommendations: []string{"split the work along component boundaries"},
	},
	models.WorkerImplementer: {
		findings:        []string{"a direct code change in the %s area is feasible", "the approach fits tier %s effort"},
		recommendations: []string{"implement behind the existing interfaces"},
	},
	models.WorkerTester: {
		findings:        []string{"testing gaps exist around the %s surface", "tier %s work needs regression coverage"},
		recommendations: []string{"write a failing test before the fix"},
	},
	models.WorkerReviewer: {
		findings:        []string{"prior art in the %s area should be followed", "tier %s changes warrant a careful review"},
		recommendations: []string{"keep the diff minimal and reviewable"},
	},
	models.WorkerCoordinator: {
		findings:        []string{"the %s work splits cleanly across contributors", "tier %s scope fits one iteration"},
		recommendations: []string{"agree on one approach before implementation"},
	},
	models.WorkerOptimizer: {
		findings:        []string{"there is optimization headroom in the %s path", "tier %s effort allows a measured refactor"},
		recommendations: []string{"measure before and after the change"},
	},
	models.WorkerValidator: {
		findings:        []string{"acceptance criteria for the %s change are inferable", "tier %s risk requires validation steps"},
		recommendations: []string{"validate against the original report"},
	},
	models.WorkerDocumenter: {
		findings:        []string{"documentation for the %s behavior is thin", "tier %s changes should be documented"},
		recommendations: []string{"update docs alongside the change"},
	},
	models.WorkerSecuritySpecialist: {
		findings:        []string{"the %s surface carries security risk to check", "tier %s changes need an exposure review"},
		recommendations: []string{"audit input handling and authorization"},
	},
	models.WorkerPerformanceExpert: {
		findings:        []string{"the %s path has measurable performance budget", "tier %s work should stay within it"},
		recommendations: []string{"benchmark the hot path"},
	},
}

// Individual-analysis confidence: base plus boosts for domain-relevant
// capabilities and the worker's running quality.
const (
	confidenceBase         = 0.55
	confidenceDomainBoost  = 0.15
	confidenceQualityBoost = 0.3
)

// individualAnalysis is the default per-worker analysis: a fixed
// template keyed by worker type, phrased against the session domain.
func individualAnalysis(_ context.Context, w *models.Worker, analysis *models.Analysis) Finding {
	template, ok := typeTemplates[w.Type]
	if !ok {
		template = typeTemplates[models.WorkerAnalyzer]
	}

	findings := make([]string, len(template.findings))
	for i, f := range template.findings {
		switch strings.Count(f, "%s") {
		case 1:
			if strings.Contains(f, "tier") {
				findings[i] = fmt.Sprintf(f, analysis.Tier)
			} else {
				findings[i] = fmt.Sprintf(f, analysis.Domain)
			}
		default:
			findings[i] = f
		}
	}

	confidence := confidenceBase + confidenceQualityBoost*w.Quality
	if workerOverlapsDomain(w, analysis.Domain) {
		confidence += confidenceDomainBoost
	}
	if confidence > 1 {
		confidence = 1
	}

	return Finding{
		WorkerID:        w.ID,
		Type:            w.Type,
		Findings:        findings,
		Recommendations: append([]string(nil), template.recommendations...),
		Confidence:      confidence,
	}
}

// workerOverlapsDomain reports whether the worker's specialization or
// capability tags mention the session domain.
func workerOverlapsDomain(w *models.Worker, domain string) bool {
	if domain == "" || domain == "general" {
		return false
	}
	if strings.Contains(strings.ToLower(w.Specialization), domain) {
		return true
	}
	for _, tag := range w.Capabilities {
		if strings.Contains(strings.ToLower(tag), domain) {
			return true
		}
	}
	return false
}

// topicBuckets maps discussion topics to the keywords that surface them
// in prior findings.
var topicBuckets = []struct {
	name     string
	keywords []string
}{
	{"complexity", []string{"complexity", "tier", "decompose", "scope"}},
	{"approach", []string{"approach", "implement", "change", "refactor", "interface"}},
	{"risk", []string{"risk", "security", "exposure", "validation"}},
	{"testing", []string{"test", "coverage", "regression", "benchmark"}},
}

// discussTopics scans the participants' findings for the fixed keyword
// buckets and records a consensus flag and confidence per topic hit.
func discussTopics(participants []Finding) []Topic {
	var topics []Topic
	for _, bucket := range topicBuckets {
		var holders []string
		sum := 0.0
		for _, p := range participants {
			if findingMentions(p, bucket.keywords) {
				holders = append(holders, p.WorkerID)
				sum += p.Confidence
			}
		}
		if len(holders) == 0 {
			continue
		}
		confidence := sum / float64(len(holders))
		topics = append(topics, Topic{
			Name: bucket.name,
			// Consensus requires more than one voice agreeing.
			Consensus:  len(holders) > 1,
			Confidence: confidence,
			Holders:    holders,
		})
	}
	return topics
}

func findingMentions(f Finding, keywords []string) bool {
	for _, text := range f.Findings {
		lower := strings.ToLower(text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	for _, text := range f.Recommendations {
		lower := strings.ToLower(text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
