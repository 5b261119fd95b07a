package analyzer

import (
	"sort"
	"strings"

	"github.com/kestrelworks/resolv/pkg/models"
)

// Pattern similarity weights. They sum to 1.0.
const (
	simWeightDomain   = 0.30
	simWeightTier     = 0.25
	simWeightKeyTerms = 0.30
	simWeightCategory = 0.15

	// similarityThreshold is exclusive: a match must exceed it.
	similarityThreshold = 0.7
)

// matchPatterns scores every stored pattern against the current
// analysis and keeps those above the similarity threshold, sorted
// descending by similarity weighted with the pattern's success rate.
func matchPatterns(stored []*models.Pattern, domain string, tier models.ComplexityTier, terms []models.KeyTerm, intent models.Intent) []models.PatternMatch {
	termSet := make(map[string]bool, len(terms))
	for _, t := range terms {
		termSet[t.Term] = true
	}

	var matches []models.PatternMatch
	for _, p := range stored {
		sim := similarity(p, domain, tier, termSet, intent)
		if sim <= similarityThreshold {
			continue
		}
		matches = append(matches, models.PatternMatch{
			Pattern:    *p,
			Similarity: sim,
			Confidence: sim * p.SuccessRate,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// similarity is the weighted average of domain match, tier closeness,
// key-term overlap and category match, each in [0,1].
func similarity(p *models.Pattern, domain string, tier models.ComplexityTier, termSet map[string]bool, intent models.Intent) float64 {
	return simWeightDomain*domainSimilarity(p.Domain, domain) +
		simWeightTier*tierCloseness(p.Tier, tier) +
		simWeightKeyTerms*termOverlap(p.KeyTerms, termSet) +
		simWeightCategory*categoryMatch(p.Category, intent)
}

// domainSimilarity scores exact matches 1.0 and substring-related
// domains 0.5.
func domainSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return 0.5
	}
	return 0
}

// tierCloseness decays linearly with tier distance across the four tiers.
func tierCloseness(a, b models.ComplexityTier) float64 {
	d := a.Rank() - b.Rank()
	if d < 0 {
		d = -d
	}
	return 1 - float64(d)/3
}

// termOverlap is the Jaccard ratio of the two key-term sets. Two empty
// sets count as fully overlapping.
func termOverlap(patternTerms []string, termSet map[string]bool) float64 {
	if len(patternTerms) == 0 && len(termSet) == 0 {
		return 1
	}
	if len(patternTerms) == 0 || len(termSet) == 0 {
		return 0
	}
	inter := 0
	union := len(termSet)
	seen := make(map[string]bool, len(patternTerms))
	for _, t := range patternTerms {
		if seen[t] {
			continue
		}
		seen[t] = true
		if termSet[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func categoryMatch(category string, intent models.Intent) float64 {
	if category == string(intent) {
		return 1
	}
	return 0
}
