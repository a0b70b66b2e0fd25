package verify

import (
	"strings"

	"github.com/kfadel/claimlens/internal/model"
)

// positive/negative indicator tokens for the conflict scan. This is a coarse
// lexical heuristic, not an entailment check: negation is not handled, so
// "not false" still counts as a negative indicator.
var (
	positiveIndicators = []string{"confirm", "verify", "true", "accurate", "correct"}
	negativeIndicators = []string{"false", "incorrect", "deny", "dispute", "wrong"}
)

// consensus vocabulary, scanned in fixed priority order
var consensusRules = []struct {
	label model.VerdictLabel
	terms []string
}{
	{model.VerdictFalse, []string{"false", "incorrect", "misinformation", "fake"}},
	{model.VerdictPartiallyTrue, []string{"partially true", "misleading", "context"}},
	{model.VerdictTrue, []string{"true", "accurate", "confirmed", "verified"}},
	{model.VerdictDisputed, []string{"disputed", "conflicting", "unclear"}},
}

// Analyzer grades an evidence bundle for confidence, diversity, and conflict
type Analyzer struct{}

// NewAnalyzer creates an analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze populates the derived fields of an evidence bundle. An empty
// source list grades as insufficient confidence, never an error.
func (a *Analyzer) Analyze(claimText string, srcs []model.EvidenceSource) model.Evidence {
	evidence := model.Evidence{
		ClaimText:  claimText,
		Sources:    srcs,
		Confidence: model.ConfidenceInsufficient,
	}
	if len(srcs) == 0 {
		return evidence
	}

	domains := make(map[string]bool)
	types := make(map[model.SourceType]bool)
	biases := make(map[string]bool)
	totalCredibility := 0.0

	for _, s := range srcs {
		domains[s.Domain] = true
		types[s.Type] = true
		if s.Bias != "" {
			biases[s.Bias] = true
		}
		totalCredibility += s.Credibility

		excerpt := strings.ToLower(s.Excerpt)
		positive := containsAnyToken(excerpt, positiveIndicators)
		negative := containsAnyToken(excerpt, negativeIndicators)
		switch {
		case positive && !negative:
			evidence.SupportingCount++
		case negative && !positive:
			evidence.ContradictingCount++
		default:
			evidence.NeutralCount++
		}
	}

	diversity := float64(len(domains))*0.3 + float64(len(types))*0.4 + float64(len(biases))*0.3
	if diversity > 1.0 {
		diversity = 1.0
	}
	evidence.DiversityScore = diversity

	avgCredibility := totalCredibility / float64(len(srcs))
	switch {
	case avgCredibility > 0.85 && len(srcs) >= 3 && diversity > 0.6:
		evidence.Confidence = model.ConfidenceHigh
	case avgCredibility > 0.7 && len(srcs) >= 2:
		evidence.Confidence = model.ConfidenceMedium
	default:
		evidence.Confidence = model.ConfidenceLow
	}

	evidence.ConflictingSources = a.detectConflict(srcs)
	return evidence
}

// detectConflict flags a bundle whose excerpts carry both a positive and a
// negative indicator token
func (a *Analyzer) detectConflict(srcs []model.EvidenceSource) bool {
	hasPositive := false
	hasNegative := false
	for _, s := range srcs {
		excerpt := strings.ToLower(s.Excerpt)
		hasPositive = hasPositive || containsAnyToken(excerpt, positiveIndicators)
		hasNegative = hasNegative || containsAnyToken(excerpt, negativeIndicators)
	}
	return hasPositive && hasNegative
}

// Consensus derives a verdict label from excerpt vocabulary alone. It is a
// fallback signal only, never the primary verdict: summed credibility below
// 2.0 yields UNVERIFIABLE outright, then the rule table applies in priority
// order.
func (a *Analyzer) Consensus(srcs []model.EvidenceSource) model.VerdictLabel {
	if len(srcs) == 0 {
		return model.VerdictUnverifiable
	}

	totalCredibility := 0.0
	var joined strings.Builder
	for _, s := range srcs {
		totalCredibility += s.Credibility
		joined.WriteString(strings.ToLower(s.Excerpt))
		joined.WriteString(" ")
	}

	if totalCredibility < 2.0 {
		return model.VerdictUnverifiable
	}

	text := joined.String()
	for _, rule := range consensusRules {
		if containsAnyToken(text, rule.terms) {
			return rule.label
		}
	}
	return model.VerdictUnverifiable
}

func containsAnyToken(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
