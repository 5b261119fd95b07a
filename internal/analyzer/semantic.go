package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kestrelworks/resolv/pkg/models"
)

const maxKeyTerms = 20

var tokenPattern = regexp.MustCompile(`[a-z][a-z0-9_-]*`)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "i": true, "if": true, "in": true, "is": true, "it": true,
	"its": true, "not": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "we": true, "when": true,
	"which": true, "will": true, "with": true, "you": true,
}

// tokenize splits lowercased text into word tokens, dropping stop words
// and single characters.
func tokenize(lower string) []string {
	raw := tokenPattern.FindAllString(lower, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < 2 || stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// keyTerms returns the top terms by frequency, descending, at most 20.
// Equal counts order alphabetically so results are stable across runs.
func keyTerms(tokens []string) []models.KeyTerm {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	terms := make([]models.KeyTerm, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, models.KeyTerm{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > maxKeyTerms {
		terms = terms[:maxKeyTerms]
	}
	return terms
}

var positiveWords = map[string]bool{
	"great": true, "good": true, "thanks": true, "love": true, "awesome": true,
	"nice": true, "excellent": true, "works": true, "helpful": true, "appreciate": true,
}

var negativeWords = map[string]bool{
	"broken": true, "fails": true, "bad": true, "crash": true, "wrong": true,
	"annoying": true, "frustrating": true, "terrible": true, "useless": true,
	"slow": true, "blocked": true, "urgent": true,
}

// classifySentiment compares positive and negative keyword counts.
// Ties, including empty text, are neutral.
func classifySentiment(tokens []string) models.Sentiment {
	pos, neg := 0, 0
	for _, tok := range tokens {
		if positiveWords[tok] {
			pos++
		}
		if negativeWords[tok] {
			neg++
		}
	}
	switch {
	case pos > neg:
		return models.SentimentPositive
	case neg > pos:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

var (
	urlPattern  = regexp.MustCompile(`https?://[^\s<>"')]+`)
	filePattern = regexp.MustCompile(`\b[\w./-]*\w\.(?:go|js|ts|tsx|py|java|rb|rs|c|cc|cpp|h|sql|yaml|yml|json|toml|md|sh|css|html)\b`)
	refPattern  = regexp.MustCompile(`#\d+`)
)

// extractEntities pulls URLs, file-like tokens and cross-reference
// tokens out of the raw (case-preserving) task text.
func extractEntities(text string) models.Entities {
	return models.Entities{
		URLs:       dedupe(urlPattern.FindAllString(text, -1)),
		Files:      dedupe(filePattern.FindAllString(text, -1)),
		References: dedupe(refPattern.FindAllString(text, -1)),
	}
}

// dedupe removes duplicates preserving first-seen order. Empty input
// yields nil so absent entity classes marshal as omitted.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// countStackTraceLines counts lines that look like stack frames or
// runtime panics across common language formats.
func countStackTraceLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "at "),
			strings.HasPrefix(trimmed, "File \""),
			strings.HasPrefix(trimmed, "panic:"),
			strings.HasPrefix(trimmed, "goroutine "),
			strings.HasPrefix(trimmed, "Traceback"):
			n++
		case stackFramePattern.MatchString(trimmed):
			n++
		}
	}
	return n
}

var stackFramePattern = regexp.MustCompile(`\.(go|py|js|java|rb):\d+`)
