// Package pipeline wires extraction, verification, synthesis, and storage
// into the end-to-end post analysis flow.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kfadel/claimlens/internal/extract"
	"github.com/kfadel/claimlens/internal/model"
	"github.com/kfadel/claimlens/internal/store"
)

// Verifier gathers evidence for one claim
type Verifier interface {
	Verify(ctx context.Context, claimText string, claimType model.ClaimType) model.Evidence
}

// Synthesizer grades one claim given its evidence
type Synthesizer interface {
	Synthesize(ctx context.Context, claim model.Claim, cctx model.ConflictContext, evidence model.Evidence) model.Verdict
}

// VerdictStore is the persistence surface the pipeline needs
type VerdictStore interface {
	Lookup(ctx context.Context, claimText string) (*model.Verdict, bool, error)
	StoreVerdict(ctx context.Context, claim model.Claim, verdict model.Verdict) error
	RecordPostAnalysis(ctx context.Context, analysis *model.PostAnalysis, cctx model.ConflictContext) error
	RecordDailyMetrics(ctx context.Context, analysis *model.PostAnalysis) error
	History(ctx context.Context, days int) ([]store.AnalysisRecord, error)
	CacheStatistics(ctx context.Context) (*store.CacheStatistics, error)
	Trending(ctx context.Context, days, limit int) ([]store.TrendingClaim, error)
}

// Pipeline runs the full analysis flow for social-media posts
type Pipeline struct {
	extractor   *extract.Extractor
	verifier    Verifier
	synthesizer Synthesizer
	store       VerdictStore
	verbose     bool
}

// New assembles a pipeline
func New(extractor *extract.Extractor, verifier Verifier, synthesizer Synthesizer, verdictStore VerdictStore, verbose bool) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		verifier:    verifier,
		synthesizer: synthesizer,
		store:       verdictStore,
		verbose:     verbose,
	}
}

// AnalyzePost runs the full flow for one post. Claims are verified in order;
// fresh cached verdicts with high or medium confidence are reused instead of
// re-verifying. Persistence failures are returned to the caller alongside the
// analysis built so far, never swallowed.
func (p *Pipeline) AnalyzePost(ctx context.Context, text, url string) (*model.PostAnalysis, error) {
	analysis := &model.PostAnalysis{
		PostID:             uuid.NewString(),
		PostURL:            url,
		PostText:           text,
		AnalyzedAt:         time.Now().UTC(),
		OverallCredibility: model.ConfidenceHigh,
		TopicSensitivity:   "normal",
	}

	claims := p.extractor.Extract(text)
	if len(claims) == 0 {
		// Nothing checkable means nothing to distrust
		if err := p.record(ctx, analysis, model.ConflictContext{}); err != nil {
			return analysis, err
		}
		return analysis, nil
	}
	analysis.Claims = claims

	cctx := p.extractor.DeriveContext(claims)

	for _, claim := range claims {
		verdict, err := p.verdictFor(ctx, claim, cctx)
		analysis.Verdicts = append(analysis.Verdicts, verdict)
		if err != nil {
			return analysis, err
		}
	}

	p.aggregate(analysis, cctx)
	if err := p.record(ctx, analysis, cctx); err != nil {
		return analysis, err
	}
	return analysis, nil
}

// verdictFor resolves one claim: cache first, then the full verify+synthesize
// path. Low-confidence cached verdicts are re-verified rather than reused.
// Lookup failures degrade to a fresh verification; write failures are hard
// errors, returned with the verdict that could not be persisted.
func (p *Pipeline) verdictFor(ctx context.Context, claim model.Claim, cctx model.ConflictContext) (model.Verdict, error) {
	cached, found, err := p.store.Lookup(ctx, claim.Text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: verdict cache lookup failed: %v\n", err)
	}
	if found && reusable(cached.Confidence) {
		if p.verbose {
			fmt.Fprintf(os.Stderr, "Cache hit for claim %q (%s)\n", claim.Text, cached.Label)
		}
		verdict := *cached
		verdict.ClaimID = claim.ID
		return verdict, nil
	}

	evidence := p.verifier.Verify(ctx, claim.Text, claim.Type)
	verdict := p.synthesizer.Synthesize(ctx, claim, cctx, evidence)
	verdict.ClaimID = claim.ID

	if err := p.store.StoreVerdict(ctx, claim, verdict); err != nil {
		return verdict, fmt.Errorf("cache verdict: %w", err)
	}
	return verdict, nil
}

// reusable reports whether a cached verdict is trustworthy enough to reuse
func reusable(confidence model.ConfidenceLevel) bool {
	return confidence == model.ConfidenceHigh || confidence == model.ConfidenceMedium
}

// aggregate derives the post-level fields from the claim verdicts
func (p *Pipeline) aggregate(analysis *model.PostAnalysis, cctx model.ConflictContext) {
	var falseCount, misleadingCount, disputedCount, unverifiableCount, insufficientCount int
	for _, verdict := range analysis.Verdicts {
		switch verdict.Label {
		case model.VerdictFalse:
			falseCount++
		case model.VerdictMisleading:
			misleadingCount++
		case model.VerdictDisputed:
			disputedCount++
		case model.VerdictUnverifiable:
			unverifiableCount++
		}
		if verdict.Confidence == model.ConfidenceInsufficient {
			insufficientCount++
		}
	}

	total := len(analysis.Verdicts)
	problematic := falseCount + misleadingCount
	shaky := falseCount + misleadingCount + disputedCount + unverifiableCount

	switch {
	case total > 0 && float64(problematic) > float64(total)*0.5:
		analysis.OverallCredibility = model.ConfidenceLow
	case total > 0 && float64(shaky) > float64(total)*0.3:
		analysis.OverallCredibility = model.ConfidenceMedium
	default:
		analysis.OverallCredibility = model.ConfidenceHigh
	}

	analysis.PotentialMisinfo = problematic > 0

	hasCasualtyClaim := false
	for _, claim := range analysis.Claims {
		if claim.Type == model.ClaimTypeCasualty {
			hasCasualtyClaim = true
			break
		}
	}

	if falseCount > 0 {
		analysis.WarningFlags = append(analysis.WarningFlags, "contains_false_claims")
	}
	if misleadingCount > 0 {
		analysis.WarningFlags = append(analysis.WarningFlags, "contains_misleading_claims")
	}
	if cctx.InvolvesCasualties && hasCasualtyClaim {
		analysis.WarningFlags = append(analysis.WarningFlags, "contains_casualty_figures")
	}
	if disputedCount > 1 {
		analysis.WarningFlags = append(analysis.WarningFlags, "multiple_disputed_claims")
	}
	if insufficientCount > 0 {
		analysis.WarningFlags = append(analysis.WarningFlags, "contains_unverified_claims")
	}

	analysis.RequiresHumanReview = cctx.InvolvesHumanRights ||
		cctx.InvolvesInternationalLaw ||
		disputedCount > 0 || misleadingCount > 0 ||
		insufficientCount > 2

	switch {
	case cctx.InvolvesCasualties || cctx.InvolvesHumanRights:
		analysis.TopicSensitivity = "highly_sensitive"
	case cctx.InvolvesSettlements || cctx.InvolvesInternationalLaw:
		analysis.TopicSensitivity = "sensitive"
	default:
		analysis.TopicSensitivity = "normal"
	}
}

// record archives the analysis and its daily metrics
func (p *Pipeline) record(ctx context.Context, analysis *model.PostAnalysis, cctx model.ConflictContext) error {
	if err := p.store.RecordPostAnalysis(ctx, analysis, cctx); err != nil {
		return fmt.Errorf("archive analysis: %w", err)
	}
	if err := p.store.RecordDailyMetrics(ctx, analysis); err != nil {
		return fmt.Errorf("record metrics: %w", err)
	}
	return nil
}

// Summary aggregates recent activity for reporting
type Summary struct {
	Days            int                    `json:"days"`
	RecentAnalyses  int                    `json:"recent_analyses"`
	HighCredibility int                    `json:"high_credibility"`
	Misinformation  int                    `json:"misinformation_detected"`
	SensitiveTopics int                    `json:"sensitive_topics"`
	CacheStats      *store.CacheStatistics `json:"cache_statistics,omitempty"`
	Trending        []store.TrendingClaim  `json:"trending_claims,omitempty"`
}

// Summarize builds the activity summary for the last N days
func (p *Pipeline) Summarize(ctx context.Context, days int) (*Summary, error) {
	if days <= 0 {
		days = 7
	}

	records, err := p.store.History(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	summary := &Summary{Days: days, RecentAnalyses: len(records)}
	for _, rec := range records {
		if rec.OverallCredibility == model.ConfidenceHigh {
			summary.HighCredibility++
		}
		if rec.PotentialMisinfo {
			summary.Misinformation++
		}
		if rec.TopicSensitivity != "normal" {
			summary.SensitiveTopics++
		}
	}

	if stats, err := p.store.CacheStatistics(ctx); err == nil {
		summary.CacheStats = stats
	} else {
		fmt.Fprintf(os.Stderr, "Warning: cache statistics unavailable: %v\n", err)
	}

	if trending, err := p.store.Trending(ctx, days, 5); err == nil {
		summary.Trending = trending
	} else {
		fmt.Fprintf(os.Stderr, "Warning: trending claims unavailable: %v\n", err)
	}

	return summary, nil
}
