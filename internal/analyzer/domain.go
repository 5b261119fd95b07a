package analyzer

import (
	"strings"

	"github.com/kestrelworks/resolv/pkg/models"
)

// domainVocabulary is declared in priority order: score ties resolve to
// the earlier entry.
var domainVocabulary = []struct {
	name     string
	keywords []string
}{
	{"backend", []string{"api", "server", "database", "endpoint", "backend", "service", "login", "500", "sql", "query", "request", "timeout"}},
	{"frontend", []string{"ui", "button", "css", "render", "frontend", "browser", "page", "layout", "component", "click"}},
	{"infrastructure", []string{"deploy", "docker", "kubernetes", "terraform", "pipeline", "infrastructure", "build", "release"}},
	{"security", []string{"auth", "token", "vulnerability", "security", "permission", "encryption", "credential"}},
	{"data", []string{"migration", "schema", "etl", "dataset", "analytics", "warehouse", "backup"}},
	{"documentation", []string{"docs", "documentation", "readme", "guide", "tutorial"}},
}

// classifyDomain scores every domain by keyword hits against the
// lowercased haystack. Highest count wins, first-declared breaks ties,
// zero matches falls back to "general".
func classifyDomain(haystack string) string {
	best := "general"
	bestCount := 0
	for _, dom := range domainVocabulary {
		count := 0
		for _, kw := range dom.keywords {
			if strings.Contains(haystack, kw) {
				count++
			}
		}
		if count > bestCount {
			best = dom.name
			bestCount = count
		}
	}
	return best
}

// Priority increments. Base is 0.5; every group contributes at most once.
const (
	priorityBase          = 0.5
	priorityUrgencyBoost  = 0.2
	prioritySecurityBoost = 0.15
	priorityImpactBoost   = 0.1
	priorityLabelBoost    = 0.15
)

var urgencyKeywords = []string{"urgent", "asap", "critical", "blocker", "immediately", "emergency"}
var securityKeywords = []string{"security", "vulnerability", "exploit", "cve", "breach"}
var impactKeywords = []string{"production", "outage", "users", "customers", "data loss", "revenue"}
var priorityLabels = map[string]bool{
	"urgent": true, "critical": true, "p0": true, "p1": true,
	"high-priority": true, "priority": true,
}

func scorePriority(haystack string, labels []string) float64 {
	score := priorityBase
	if containsAny(haystack, urgencyKeywords) {
		score += priorityUrgencyBoost
	}
	if containsAny(haystack, securityKeywords) {
		score += prioritySecurityBoost
	}
	if containsAny(haystack, impactKeywords) {
		score += priorityImpactBoost
	}
	for _, label := range labels {
		if priorityLabels[strings.ToLower(label)] {
			score += priorityLabelBoost
			break
		}
	}
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// riskRules map trigger keywords to a risk record. Each rule fires at
// most once per analysis.
var riskRules = []struct {
	keywords []string
	risk     models.Risk
}{
	{
		keywords: []string{"migration", "schema change", "drop table", "alter table"},
		risk: models.Risk{
			Type:       "data-loss",
			Severity:   models.RiskHigh,
			Mitigation: "back up affected data and stage the migration behind a rollback plan",
		},
	},
	{
		keywords: []string{"production", "live", "outage", "downtime"},
		risk: models.Risk{
			Type:       "service-disruption",
			Severity:   models.RiskHigh,
			Mitigation: "roll out behind a flag and verify in a staging environment first",
		},
	},
	{
		keywords: []string{"auth", "security", "token", "credential", "vulnerability"},
		risk: models.Risk{
			Type:       "security-vulnerability",
			Severity:   models.RiskMedium,
			Mitigation: "request a security review before merging",
		},
	},
}

// assessRisks applies the fixed keyword table, plus a code-quality risk
// whenever the task embeds code blocks.
func assessRisks(haystack string, codeBlocks int) []models.Risk {
	var risks []models.Risk
	for _, rule := range riskRules {
		if containsAny(haystack, rule.keywords) {
			risks = append(risks, rule.risk)
		}
	}
	if codeBlocks > 0 {
		risks = append(risks, models.Risk{
			Type:       "code-quality",
			Severity:   models.RiskLow,
			Mitigation: "review the embedded code before applying it verbatim",
		})
	}
	return risks
}

// intentApproaches seeds the ranked approach list per intent. Matched
// pattern approaches rank ahead of these defaults.
var intentApproaches = map[models.Intent][]string{
	models.IntentBugReport:      {"targeted-fix", "regression-test-first", "root-cause-analysis"},
	models.IntentFeatureRequest: {"incremental-build", "prototype-first", "design-review"},
	models.IntentEnhancement:    {"measure-then-optimize", "incremental-refactor", "benchmark-driven"},
	models.IntentDocumentation:  {"docs-update", "example-driven", "review-pass"},
	models.IntentQuestion:       {"investigate-and-answer", "docs-update"},
	models.IntentGeneral:        {"investigate-and-answer", "incremental-build"},
}

// rankApproaches orders candidate approach tags: pattern-derived
// approaches first (already confidence-sorted), then intent defaults,
// deduplicated.
func rankApproaches(intent models.Intent, matches []models.PatternMatch) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range matches {
		if m.Pattern.Approach == "" || seen[m.Pattern.Approach] {
			continue
		}
		seen[m.Pattern.Approach] = true
		out = append(out, m.Pattern.Approach)
	}
	for _, app := range intentApproaches[intent] {
		if seen[app] {
			continue
		}
		seen[app] = true
		out = append(out, app)
	}
	return out
}
