package model

import "time"

// SourceType classifies the tier an evidence source belongs to
type SourceType string

const (
	SourceTypeFactChecker SourceType = "fact_checker"
	SourceTypeNews        SourceType = "news"
	SourceTypeNGO         SourceType = "ngo"
	SourceTypeGovernment  SourceType = "government"
	SourceTypeUN          SourceType = "un"
	SourceTypeAcademic    SourceType = "academic"
)

// EvidenceSource is one retrieved document relevant to a claim
type EvidenceSource struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Domain      string     `json:"domain"`
	Credibility float64    `json:"credibility_score"` // 0.0-1.0, from the registry
	Bias        string     `json:"bias_rating,omitempty"`
	PublishedAt *time.Time `json:"publication_date,omitempty"`
	Excerpt     string     `json:"relevant_excerpt"`
	Type        SourceType `json:"source_type"`
	Author      string     `json:"author,omitempty"`
	Methodology string     `json:"methodology,omitempty"`
}

// Evidence is the deduplicated bundle of sources gathered for one claim.
// Ephemeral: built per verification attempt; only the derived verdict is cached.
type Evidence struct {
	ClaimText          string           `json:"claim_text"`
	Sources            []EvidenceSource `json:"sources"`
	SupportingCount    int              `json:"supporting_count"`
	ContradictingCount int              `json:"contradicting_count"`
	NeutralCount       int              `json:"neutral_count"`
	Confidence         ConfidenceLevel  `json:"overall_confidence"`
	ConflictingSources bool             `json:"conflicting_sources"` // Lexical heuristic, not entailment
	DiversityScore     float64          `json:"source_diversity_score"`
}

// URLs returns the URLs of all sources in the bundle, in order.
func (e Evidence) URLs() []string {
	urls := make([]string, 0, len(e.Sources))
	for _, s := range e.Sources {
		urls = append(urls, s.URL)
	}
	return urls
}
