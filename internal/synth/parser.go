package synth

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kfadel/claimlens/internal/model"
)

var (
	jsonBlockPattern      = regexp.MustCompile(`(?s)\{.*\}`)
	verdictLinePattern    = regexp.MustCompile(`(?i)\b(TRUE|FALSE|PARTIALLY_TRUE|DISPUTED|UNVERIFIABLE|MISLEADING)\b`)
	confidenceLinePattern = regexp.MustCompile(`(?i)\b(HIGH|MEDIUM|LOW|INSUFFICIENT)\b`)
)

// sensitiveKeywords flag claims that touch casualties or alleged atrocities
var sensitiveKeywords = []string{
	"killed", "dead", "murdered", "massacre", "genocide", "ethnic cleansing",
	"war crime", "torture", "children", "civilians", "hospital", "school",
}

type verdictPayload struct {
	Verdict         string `json:"verdict"`
	Confidence      string `json:"confidence"`
	Explanation     string `json:"explanation"`
	EvidenceSummary string `json:"evidence_summary"`
	Limitations     string `json:"limitations"`
	ContextNeeded   string `json:"context_needed"`
}

// Parse turns a raw model reply into a Verdict. It tries the first JSON
// object in the reply, then falls back to scanning for labelled lines, and
// never fails: unparseable replies yield UNVERIFIABLE with the raw text kept
// as the explanation.
func Parse(raw string, claim model.Claim, evidence model.Evidence) model.Verdict {
	verdict := model.Verdict{
		ClaimID:          claim.ID,
		Label:            model.VerdictUnverifiable,
		Confidence:       model.ConfidenceInsufficient,
		SourcesConsulted: evidence.URLs(),
		VerifiedAt:       time.Now().UTC(),
		SensitiveTopic:   SensitiveTopic(claim.Text),
	}

	if payload, ok := parseJSON(raw); ok {
		verdict.Label = parseLabel(payload.Verdict)
		verdict.Confidence = model.ParseConfidence(strings.ToLower(payload.Confidence))
		verdict.Explanation = defaultIfEmpty(payload.Explanation, "No explanation provided")
		verdict.EvidenceSummary = defaultIfEmpty(payload.EvidenceSummary, summaryFromEvidence(evidence))
		verdict.Limitations = payload.Limitations
		verdict.ContextNeeded = payload.ContextNeeded
		return verdict
	}

	// Line-scan fallback for models that ignore the JSON instruction
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "verdict:"):
			if m := verdictLinePattern.FindString(line); m != "" {
				verdict.Label = parseLabel(m)
			}
		case strings.Contains(lower, "confidence:"):
			if m := confidenceLinePattern.FindString(line); m != "" {
				verdict.Confidence = model.ParseConfidence(strings.ToLower(m))
			}
		}
	}

	explanation := truncateRunes(strings.TrimSpace(raw), 500)
	verdict.Explanation = defaultIfEmpty(explanation, "No explanation provided")
	verdict.EvidenceSummary = summaryFromEvidence(evidence)
	return verdict
}

func parseJSON(raw string) (verdictPayload, bool) {
	block := jsonBlockPattern.FindString(raw)
	if block == "" {
		return verdictPayload{}, false
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return verdictPayload{}, false
	}
	return payload, true
}

// parseLabel validates against the six known labels; anything else maps to
// UNVERIFIABLE rather than leaking free text into stored verdicts
func parseLabel(raw string) model.VerdictLabel {
	candidate := model.VerdictLabel(strings.ToUpper(strings.TrimSpace(raw)))
	for _, label := range model.VerdictLabels {
		if candidate == label {
			return label
		}
	}
	return model.VerdictUnverifiable
}

// SensitiveTopic reports whether the claim text touches casualty or atrocity
// vocabulary that warrants extra care in presentation
func SensitiveTopic(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func summaryFromEvidence(evidence model.Evidence) string {
	return fmt.Sprintf("Found %d sources", len(evidence.Sources))
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// truncateRunes cuts on a rune boundary so multi-byte text stays valid UTF-8
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
