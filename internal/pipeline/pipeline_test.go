package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kfadel/claimlens/internal/extract"
	"github.com/kfadel/claimlens/internal/model"
	"github.com/kfadel/claimlens/internal/store"
)

// countingVerifier returns a fixed bundle and counts invocations
type countingVerifier struct {
	mu    sync.Mutex
	calls int
}

func (v *countingVerifier) Verify(ctx context.Context, claimText string, claimType model.ClaimType) model.Evidence {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	return model.Evidence{
		ClaimText:  claimText,
		Sources:    []model.EvidenceSource{{URL: "https://e.example/1", Domain: "e.example", Credibility: 0.9}},
		Confidence: model.ConfidenceMedium,
	}
}

func (v *countingVerifier) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

// fixedSynthesizer returns the configured label and confidence for every claim
type fixedSynthesizer struct {
	label      model.VerdictLabel
	confidence model.ConfidenceLevel
}

func (s *fixedSynthesizer) Synthesize(ctx context.Context, claim model.Claim, cctx model.ConflictContext, evidence model.Evidence) model.Verdict {
	return model.Verdict{
		ClaimID:          claim.ID,
		Label:            s.label,
		Confidence:       s.confidence,
		Explanation:      "stub explanation",
		EvidenceSummary:  "stub summary",
		SourcesConsulted: evidence.URLs(),
		VerifiedAt:       time.Now().UTC(),
	}
}

func newTestPipeline(t *testing.T, synth Synthesizer) (*Pipeline, *countingVerifier) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), 30)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	verifier := &countingVerifier{}
	return New(extract.NewExtractor(), verifier, synth, s, false), verifier
}

func TestPipeline_NoClaims(t *testing.T) {
	p, verifier := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictTrue, confidence: model.ConfidenceHigh})

	analysis, err := p.AnalyzePost(context.Background(), "What a lovely morning for a walk!", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(analysis.Claims) != 0 || len(analysis.Verdicts) != 0 {
		t.Errorf("Expected no claims or verdicts, got %d/%d", len(analysis.Claims), len(analysis.Verdicts))
	}
	if analysis.OverallCredibility != model.ConfidenceHigh {
		t.Errorf("Expected high credibility for claim-free post, got %s", analysis.OverallCredibility)
	}
	if analysis.PotentialMisinfo || analysis.RequiresHumanReview {
		t.Error("Expected no misinformation or review flags")
	}
	if analysis.TopicSensitivity != "normal" {
		t.Errorf("Expected normal sensitivity, got %q", analysis.TopicSensitivity)
	}
	if verifier.count() != 0 {
		t.Errorf("Expected no verification calls, got %d", verifier.count())
	}
}

func TestPipeline_VerdictPerClaim(t *testing.T) {
	p, verifier := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictTrue, confidence: model.ConfidenceHigh})

	text := "Over 500 civilians were killed in the strikes. The ceasefire collapsed after two weeks of occupation talks."
	analysis, err := p.AnalyzePost(context.Background(), text, "https://example.com/post/1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(analysis.Claims) == 0 {
		t.Fatal("Expected claims")
	}
	if len(analysis.Verdicts) != len(analysis.Claims) {
		t.Fatalf("Expected one verdict per claim, got %d/%d", len(analysis.Verdicts), len(analysis.Claims))
	}
	for i, verdict := range analysis.Verdicts {
		if verdict.ClaimID != analysis.Claims[i].ID {
			t.Errorf("Verdict %d not aligned with its claim", i)
		}
	}
	if verifier.count() != len(analysis.Claims) {
		t.Errorf("Expected %d verification calls, got %d", len(analysis.Claims), verifier.count())
	}
	if analysis.PostURL != "https://example.com/post/1" {
		t.Errorf("Expected post URL carried over, got %q", analysis.PostURL)
	}
}

func TestPipeline_CacheReuse(t *testing.T) {
	p, verifier := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictTrue, confidence: model.ConfidenceHigh})

	text := "Over 500 civilians were killed in Gaza since October 2023."
	if _, err := p.AnalyzePost(context.Background(), text, ""); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := verifier.count()
	if callsAfterFirst == 0 {
		t.Fatal("Expected verification on first analysis")
	}

	// Same claim again: the fresh high-confidence verdict is reused
	if _, err := p.AnalyzePost(context.Background(), text, ""); err != nil {
		t.Fatal(err)
	}
	if verifier.count() != callsAfterFirst {
		t.Errorf("Expected no further verification calls, got %d then %d", callsAfterFirst, verifier.count())
	}
}

func TestPipeline_LowConfidenceNotReused(t *testing.T) {
	p, verifier := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictUnverifiable, confidence: model.ConfidenceInsufficient})

	text := "Over 500 civilians were killed in Gaza since October 2023."
	if _, err := p.AnalyzePost(context.Background(), text, ""); err != nil {
		t.Fatal(err)
	}
	first := verifier.count()

	// Cached verdict exists but grades insufficient, so the claim re-verifies
	if _, err := p.AnalyzePost(context.Background(), text, ""); err != nil {
		t.Fatal(err)
	}
	if verifier.count() != first*2 {
		t.Errorf("Expected re-verification of low-confidence verdict, got %d then %d", first, verifier.count())
	}
}

func TestPipeline_MisinfoAggregation(t *testing.T) {
	p, _ := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictFalse, confidence: model.ConfidenceHigh})

	analysis, err := p.AnalyzePost(context.Background(), "Over 500 civilians were killed in Gaza since October 2023.", "")
	if err != nil {
		t.Fatal(err)
	}
	if !analysis.PotentialMisinfo {
		t.Error("Expected misinformation flag with FALSE verdicts")
	}
	if analysis.OverallCredibility != model.ConfidenceLow {
		t.Errorf("Expected low credibility, got %s", analysis.OverallCredibility)
	}
	hasFlag := false
	for _, flag := range analysis.WarningFlags {
		if flag == "contains_false_claims" {
			hasFlag = true
		}
	}
	if !hasFlag {
		t.Errorf("Expected contains_false_claims flag, got %v", analysis.WarningFlags)
	}
	if analysis.TopicSensitivity != "highly_sensitive" {
		t.Errorf("Expected highly_sensitive for casualty claims, got %q", analysis.TopicSensitivity)
	}
}

func TestPipeline_DisputedTriggersReview(t *testing.T) {
	p, _ := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictDisputed, confidence: model.ConfidenceMedium})

	analysis, err := p.AnalyzePost(context.Background(), "The ceasefire agreement was signed in 1994 by both parties.", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Claims) == 0 {
		t.Fatal("Expected claims")
	}
	if !analysis.RequiresHumanReview {
		t.Error("Expected review flag for disputed verdicts")
	}
	if analysis.PotentialMisinfo {
		t.Error("Disputed alone is not misinformation")
	}
}

func hasWarningFlag(analysis *model.PostAnalysis, flag string) bool {
	for _, f := range analysis.WarningFlags {
		if f == flag {
			return true
		}
	}
	return false
}

func TestPipeline_VerdictWriteFailureSurfaces(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), 30)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	p := New(extract.NewExtractor(), &countingVerifier{}, &fixedSynthesizer{label: model.VerdictTrue, confidence: model.ConfidenceHigh}, s, false)
	_ = s.Close()

	analysis, err := p.AnalyzePost(context.Background(), "Over 500 civilians were killed in Gaza since October 2023.", "")
	if err == nil {
		t.Fatal("Expected error when the verdict cannot be persisted")
	}
	if analysis == nil || len(analysis.Verdicts) != 1 {
		t.Fatalf("Expected the analysis built so far alongside the error, got %+v", analysis)
	}
}

func TestPipeline_ArchiveFailureSurfaces(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), 30)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	p := New(extract.NewExtractor(), &countingVerifier{}, &fixedSynthesizer{label: model.VerdictTrue, confidence: model.ConfidenceHigh}, s, false)
	_ = s.Close()

	// Claim-free posts still archive; a failed archive is a hard error
	analysis, err := p.AnalyzePost(context.Background(), "Just a lovely day out there!", "")
	if err == nil {
		t.Fatal("Expected error when the analysis cannot be archived")
	}
	if analysis == nil {
		t.Fatal("Expected the completed analysis alongside the error")
	}
}

func TestPipeline_CasualtyFigureFlag(t *testing.T) {
	p, _ := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictTrue, confidence: model.ConfidenceHigh})

	analysis, err := p.AnalyzePost(context.Background(), "Over 500 civilians were killed in Gaza since October 2023.", "")
	if err != nil {
		t.Fatal(err)
	}
	if !hasWarningFlag(analysis, "contains_casualty_figures") {
		t.Errorf("Expected casualty-figure flag, got %v", analysis.WarningFlags)
	}
}

func TestPipeline_DisputedFlagThreshold(t *testing.T) {
	p, _ := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictDisputed, confidence: model.ConfidenceMedium})

	single, err := p.AnalyzePost(context.Background(), "The ceasefire agreement was signed in 1994 by both parties.", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(single.Verdicts) != 1 {
		t.Fatalf("Expected one verdict, got %d", len(single.Verdicts))
	}
	if hasWarningFlag(single, "multiple_disputed_claims") {
		t.Errorf("Expected no disputed flag for a single disputed claim, got %v", single.WarningFlags)
	}

	multi, err := p.AnalyzePost(context.Background(), "The ceasefire agreement was signed in 1994 by both parties. The blockade reduced imports by 40 percent since 2007.", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(multi.Verdicts) < 2 {
		t.Fatalf("Expected at least two verdicts, got %d", len(multi.Verdicts))
	}
	if !hasWarningFlag(multi, "multiple_disputed_claims") {
		t.Errorf("Expected disputed flag with two disputed claims, got %v", multi.WarningFlags)
	}
}

func TestPipeline_UnverifiedClaimsFlag(t *testing.T) {
	p, _ := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictUnverifiable, confidence: model.ConfidenceInsufficient})

	analysis, err := p.AnalyzePost(context.Background(), "The ceasefire agreement was signed in 1994 by both parties.", "")
	if err != nil {
		t.Fatal(err)
	}
	if !hasWarningFlag(analysis, "contains_unverified_claims") {
		t.Errorf("Expected unverified-claims flag, got %v", analysis.WarningFlags)
	}
}

func TestPipeline_Summarize(t *testing.T) {
	p, _ := newTestPipeline(t, &fixedSynthesizer{label: model.VerdictTrue, confidence: model.ConfidenceHigh})

	if _, err := p.AnalyzePost(context.Background(), "Over 500 civilians were killed in Gaza since October 2023.", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AnalyzePost(context.Background(), "Just saying good morning to everyone!", ""); err != nil {
		t.Fatal(err)
	}

	summary, err := p.Summarize(context.Background(), 7)
	if err != nil {
		t.Fatalf("Expected summary, got %v", err)
	}
	if summary.RecentAnalyses != 2 {
		t.Errorf("Expected 2 recent analyses, got %d", summary.RecentAnalyses)
	}
	if summary.CacheStats == nil || summary.CacheStats.TotalCached != 1 {
		t.Errorf("Expected 1 cached verdict, got %+v", summary.CacheStats)
	}
	if summary.SensitiveTopics != 1 {
		t.Errorf("Expected 1 sensitive analysis, got %d", summary.SensitiveTopics)
	}
}
