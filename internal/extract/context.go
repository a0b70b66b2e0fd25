package extract

import (
	"strings"

	"github.com/kfadel/claimlens/internal/model"
)

// DeriveContext folds sensitive sub-topic flags across a claim set. Each
// flag has its own keyword trigger list; scope and time period are assigned
// from individual claims' location/temporal context.
func (e *Extractor) DeriveContext(claims []model.Claim) model.ConflictContext {
	var ctx model.ConflictContext

	for _, claim := range claims {
		lower := strings.ToLower(claim.Text)

		if containsAny(lower, "killed", "dead", "casualties", "injured") {
			ctx.InvolvesCasualties = true
		}
		if containsAny(lower, "settlement", "settler", "colony") {
			ctx.InvolvesSettlements = true
		}
		if containsAny(lower, "international law", "geneva", "violation", "war crime") {
			ctx.InvolvesInternationalLaw = true
		}
		if containsAny(lower, "1948", "1967", "nakba", "oslo", "camp david") {
			ctx.InvolvesHistoricalEvents = true
		}
		if containsAny(lower, "territory", "border", "land", "annexation") {
			ctx.InvolvesTerritoryClaims = true
		}
		if containsAny(lower, "human rights", "torture", "detention", "discrimination") {
			ctx.InvolvesHumanRights = true
		}

		switch strings.ToLower(claim.Location) {
		case "gaza", "rafah", "khan younis":
			ctx.GeographicalScope = "gaza"
		case "west bank", "hebron", "ramallah", "bethlehem":
			ctx.GeographicalScope = "west_bank"
		case "jerusalem", "sheikh jarrah", "silwan":
			ctx.GeographicalScope = "jerusalem"
		}

		switch claim.Temporal {
		case "current", "recent":
			ctx.TimePeriod = "current"
		case "historical":
			ctx.TimePeriod = "historical"
		case "ongoing":
			ctx.TimePeriod = "ongoing"
		}
	}

	return ctx
}

// ContextSummary renders the folded context as a single prompt-friendly line
func ContextSummary(claim model.Claim, ctx model.ConflictContext) string {
	var parts []string

	if claim.Location != "" {
		parts = append(parts, "Location: "+claim.Location)
	}
	if claim.Temporal != "" {
		parts = append(parts, "Time period: "+claim.Temporal)
	}
	if ctx.InvolvesCasualties {
		parts = append(parts, "Involves casualty figures")
	}
	if ctx.InvolvesSettlements {
		parts = append(parts, "Involves settlement activity")
	}
	if ctx.InvolvesInternationalLaw {
		parts = append(parts, "Involves international law")
	}
	if ctx.GeographicalScope != "" {
		parts = append(parts, "Geographic scope: "+ctx.GeographicalScope)
	}

	if len(parts) == 0 {
		return "General conflict context"
	}
	return strings.Join(parts, "; ")
}
