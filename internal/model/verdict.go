package model

import "time"

// VerdictLabel is the graded outcome of verifying one claim
type VerdictLabel string

const (
	VerdictTrue          VerdictLabel = "TRUE"
	VerdictFalse         VerdictLabel = "FALSE"
	VerdictPartiallyTrue VerdictLabel = "PARTIALLY_TRUE"
	VerdictDisputed      VerdictLabel = "DISPUTED"
	VerdictUnverifiable  VerdictLabel = "UNVERIFIABLE"
	VerdictMisleading    VerdictLabel = "MISLEADING"
)

// VerdictLabels lists every valid label, used when parsing model output
var VerdictLabels = []VerdictLabel{
	VerdictTrue,
	VerdictFalse,
	VerdictPartiallyTrue,
	VerdictDisputed,
	VerdictUnverifiable,
	VerdictMisleading,
}

// ConfidenceLevel grades how much trust a verdict (or evidence bundle) carries
type ConfidenceLevel string

const (
	ConfidenceHigh         ConfidenceLevel = "high"
	ConfidenceMedium       ConfidenceLevel = "medium"
	ConfidenceLow          ConfidenceLevel = "low"
	ConfidenceInsufficient ConfidenceLevel = "insufficient"
)

// ParseConfidence maps free text onto a confidence level, defaulting to insufficient
func ParseConfidence(s string) ConfidenceLevel {
	switch ConfidenceLevel(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceInsufficient:
		return ConfidenceLevel(s)
	default:
		return ConfidenceInsufficient
	}
}

// Verdict is the outcome for one claim. Label and Confidence are always both
// set: no usable evidence yields UNVERIFIABLE/insufficient, never empty fields.
type Verdict struct {
	ClaimID          string          `json:"claim_id"`
	Label            VerdictLabel    `json:"verdict"`
	Confidence       ConfidenceLevel `json:"confidence"`
	Explanation      string          `json:"explanation"`
	EvidenceSummary  string          `json:"evidence_summary"`
	SourcesConsulted []string        `json:"sources_consulted"`
	Limitations      string          `json:"limitations,omitempty"`
	ContextNeeded    string          `json:"context_needed,omitempty"`
	VerifiedAt       time.Time       `json:"verification_timestamp"`
	SensitiveTopic   bool            `json:"sensitive_topic"`
}

// PostAnalysis is the complete result of analyzing one social-media post.
// Verdicts are positionally aligned with Claims.
type PostAnalysis struct {
	PostID               string          `json:"post_id"`
	PostURL              string          `json:"post_url,omitempty"`
	PostText             string          `json:"post_text"`
	Claims               []Claim         `json:"claims"`
	Verdicts             []Verdict       `json:"verdicts"`
	OverallCredibility   ConfidenceLevel `json:"overall_credibility"`
	AnalyzedAt           time.Time       `json:"analysis_timestamp"`
	PotentialMisinfo     bool            `json:"potential_misinformation"`
	RequiresHumanReview  bool            `json:"requires_human_review"`
	TopicSensitivity     string          `json:"topic_sensitivity"` // normal, sensitive, highly_sensitive
	WarningFlags         []string        `json:"warning_flags,omitempty"`
}
