package extract

import (
	"strings"
	"testing"

	"github.com/kfadel/claimlens/internal/model"
)

func TestDeriveContext_Flags(t *testing.T) {
	extractor := NewExtractor()

	claims := []model.Claim{
		{Text: "Dozens were killed in the strikes", Location: "Gaza", Temporal: "recent"},
		{Text: "A new settlement was approved near the city"},
		{Text: "Observers called it a violation of international law"},
	}

	ctx := extractor.DeriveContext(claims)
	if !ctx.InvolvesCasualties {
		t.Error("Expected casualties flag")
	}
	if !ctx.InvolvesSettlements {
		t.Error("Expected settlements flag")
	}
	if !ctx.InvolvesInternationalLaw {
		t.Error("Expected international law flag")
	}
	if ctx.InvolvesHumanRights {
		t.Error("Did not expect human rights flag")
	}
	if ctx.GeographicalScope != "gaza" {
		t.Errorf("Expected gaza scope, got %q", ctx.GeographicalScope)
	}
	if ctx.TimePeriod != "current" {
		t.Errorf("Expected current time period, got %q", ctx.TimePeriod)
	}
}

func TestDeriveContext_HistoricalAndWestBank(t *testing.T) {
	extractor := NewExtractor()

	claims := []model.Claim{
		{Text: "The 1948 displacement is remembered as the nakba", Location: "Hebron", Temporal: "historical"},
	}

	ctx := extractor.DeriveContext(claims)
	if !ctx.InvolvesHistoricalEvents {
		t.Error("Expected historical events flag")
	}
	if ctx.GeographicalScope != "west_bank" {
		t.Errorf("Expected west_bank scope, got %q", ctx.GeographicalScope)
	}
	if ctx.TimePeriod != "historical" {
		t.Errorf("Expected historical time period, got %q", ctx.TimePeriod)
	}
}

func TestDeriveContext_Empty(t *testing.T) {
	extractor := NewExtractor()

	ctx := extractor.DeriveContext(nil)
	if ctx != (model.ConflictContext{}) {
		t.Errorf("Expected zero context for no claims, got %+v", ctx)
	}
}

func TestContextSummary(t *testing.T) {
	claim := model.Claim{Location: "Gaza", Temporal: "recent"}
	ctx := model.ConflictContext{InvolvesCasualties: true, GeographicalScope: "gaza"}

	summary := ContextSummary(claim, ctx)
	for _, want := range []string{"Location: Gaza", "Time period: recent", "casualty", "gaza"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Expected summary to contain %q, got %q", want, summary)
		}
	}
}

func TestContextSummary_Default(t *testing.T) {
	summary := ContextSummary(model.Claim{}, model.ConflictContext{})
	if summary != "General conflict context" {
		t.Errorf("Expected default summary, got %q", summary)
	}
}
