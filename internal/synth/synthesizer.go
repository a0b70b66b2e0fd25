// Package synth renders verdict-synthesis requests, parses the model's
// replies, and degrades to deterministic fallback verdicts when the external
// model is unavailable. No failure in here ever propagates to the pipeline.
package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kfadel/claimlens/internal/extract"
	"github.com/kfadel/claimlens/internal/llm"
	"github.com/kfadel/claimlens/internal/model"
	"github.com/kfadel/claimlens/internal/verify"
)

// maxPromptSources caps how many evidence excerpts the prompt carries
const maxPromptSources = 10

// Synthesizer turns a claim plus its evidence bundle into a graded verdict
type Synthesizer struct {
	provider llm.Provider // nil disables external synthesis
	analyzer *verify.Analyzer
}

// NewSynthesizer creates a synthesizer over the given provider (may be nil)
func NewSynthesizer(provider llm.Provider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		analyzer: verify.NewAnalyzer(),
	}
}

// Synthesize asks the external model for a verdict and parses the reply.
// Provider absence or failure yields the deterministic fallback verdict.
func (s *Synthesizer) Synthesize(ctx context.Context, claim model.Claim, cctx model.ConflictContext, evidence model.Evidence) model.Verdict {
	if s.provider == nil {
		return s.fallback(claim, evidence, "verdict synthesis disabled: no provider configured")
	}

	raw, err := s.provider.Complete(ctx, BuildPrompt(claim, cctx, evidence))
	if err != nil {
		return s.fallback(claim, evidence, fmt.Sprintf("synthesis call failed: %v", err))
	}

	return Parse(raw, claim, evidence)
}

// fallback builds the deterministic degraded verdict: UNVERIFIABLE and
// insufficient, with the failure reason kept for audit and the consensus
// heuristic surfaced as a secondary signal.
func (s *Synthesizer) fallback(claim model.Claim, evidence model.Evidence, reason string) model.Verdict {
	verdict := model.Verdict{
		ClaimID:          claim.ID,
		Label:            model.VerdictUnverifiable,
		Confidence:       model.ConfidenceInsufficient,
		Explanation:      fmt.Sprintf("Unable to verify this claim through the synthesis step: %s.", reason),
		EvidenceSummary:  fmt.Sprintf("Found %d sources", len(evidence.Sources)),
		SourcesConsulted: []string{},
		VerifiedAt:       time.Now().UTC(),
		SensitiveTopic:   SensitiveTopic(claim.Text),
	}

	if consensus := s.analyzer.Consensus(evidence.Sources); consensus != model.VerdictUnverifiable {
		verdict.Limitations = fmt.Sprintf("Source consensus heuristic alone suggests %s; not used as the verdict.", consensus)
	}
	return verdict
}

// BuildPrompt renders the structured synthesis request: claim, folded context,
// ranked evidence excerpts, and the exact JSON shape expected back
func BuildPrompt(claim model.Claim, cctx model.ConflictContext, evidence model.Evidence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fact-check this claim: %q\n\n", claim.Text)
	fmt.Fprintf(&b, "Context: %s\n\n", extract.ContextSummary(claim, cctx))
	fmt.Fprintf(&b, "Evidence found:\n%s\n\n", formatEvidence(evidence))

	b.WriteString(`Please provide a structured fact-check verdict with:
1. Verdict (TRUE/FALSE/PARTIALLY_TRUE/DISPUTED/UNVERIFIABLE/MISLEADING)
2. Confidence level (HIGH/MEDIUM/LOW/INSUFFICIENT)
3. Detailed explanation (minimum 100 words)
4. Evidence summary
5. Any limitations in verification
6. Additional context needed (if any)

Format your response as JSON with these exact keys: verdict, confidence, explanation, evidence_summary, limitations, context_needed`)

	return b.String()
}

func formatEvidence(evidence model.Evidence) string {
	if len(evidence.Sources) == 0 {
		return "No external sources found"
	}

	var lines []string
	for i, source := range evidence.Sources {
		if i == maxPromptSources {
			break
		}
		excerpt := truncateRunes(source.Excerpt, 200)
		lines = append(lines, fmt.Sprintf("- %s (credibility: %.2f): %s", source.Domain, source.Credibility, excerpt))
	}
	return strings.Join(lines, "\n")
}
