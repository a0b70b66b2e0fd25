package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kfadel/claimlens/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), 30)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testVerdict(label model.VerdictLabel, confidence model.ConfidenceLevel) model.Verdict {
	return model.Verdict{
		Label:            label,
		Confidence:       confidence,
		Explanation:      "explanation",
		EvidenceSummary:  "summary",
		SourcesConsulted: []string{"https://a.example", "https://b.example"},
		VerifiedAt:       time.Now().UTC(),
	}
}

func TestFingerprint_Normalization(t *testing.T) {
	base := Fingerprint("Over 500 civilians were killed")

	if Fingerprint("  over 500 CIVILIANS were killed  ") != base {
		t.Error("Expected case and whitespace to normalize to the same fingerprint")
	}
	if Fingerprint("over 501 civilians were killed") == base {
		t.Error("Expected different text to fingerprint differently")
	}
	if len(base) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(base))
	}
}

func TestStore_LookupMiss(t *testing.T) {
	s := openTestStore(t)

	verdict, found, err := s.Lookup(context.Background(), "never stored")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if found || verdict != nil {
		t.Error("Expected a miss for unknown claim")
	}
}

func TestStore_StoreAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	claim := model.Claim{ID: "c1", Text: "The crossing was closed for a week"}

	if err := s.StoreVerdict(ctx, claim, testVerdict(model.VerdictTrue, model.ConfidenceHigh)); err != nil {
		t.Fatalf("Expected store to succeed, got %v", err)
	}

	// Lookup normalizes, so a differently-cased text hits the same entry
	verdict, found, err := s.Lookup(ctx, "  THE CROSSING WAS CLOSED FOR A WEEK ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !found {
		t.Fatal("Expected a cache hit")
	}
	if verdict.Label != model.VerdictTrue || verdict.Confidence != model.ConfidenceHigh {
		t.Errorf("Unexpected cached verdict: %s/%s", verdict.Label, verdict.Confidence)
	}
	if len(verdict.SourcesConsulted) != 2 {
		t.Errorf("Expected 2 sources round-tripped, got %d", len(verdict.SourcesConsulted))
	}
}

func TestStore_FreshnessWindow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	claim := model.Claim{Text: "stale claim"}

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	if err := s.StoreVerdict(ctx, claim, testVerdict(model.VerdictTrue, model.ConfidenceHigh)); err != nil {
		t.Fatalf("Expected store to succeed, got %v", err)
	}

	// 29 days later: still fresh
	s.now = func() time.Time { return base.AddDate(0, 0, 29) }
	if _, found, _ := s.Lookup(ctx, "stale claim"); !found {
		t.Error("Expected hit 29 days after verification")
	}

	// 31 days later: outside the window
	s.now = func() time.Time { return base.AddDate(0, 0, 31) }
	if _, found, _ := s.Lookup(ctx, "stale claim"); found {
		t.Error("Expected miss 31 days after verification")
	}
}

func TestStore_AccessCountIncrements(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	claim := model.Claim{Text: "busy claim"}

	if err := s.StoreVerdict(ctx, claim, testVerdict(model.VerdictTrue, model.ConfidenceHigh)); err != nil {
		t.Fatalf("Expected store to succeed, got %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, found, err := s.Lookup(ctx, "busy claim"); err != nil || !found {
			t.Fatalf("Expected hit on lookup %d, found=%v err=%v", i, found, err)
		}
	}

	var count int
	row := s.db.QueryRow(`SELECT access_count FROM verified_facts WHERE claim_hash = ?`, Fingerprint("busy claim"))
	if err := row.Scan(&count); err != nil {
		t.Fatalf("Expected access count row, got %v", err)
	}
	// Initial insert counts as 1, plus three lookups
	if count != 4 {
		t.Errorf("Expected access count 4, got %d", count)
	}
}

func TestStore_UpsertPreservesAccessCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	claim := model.Claim{Text: "revised claim"}

	if err := s.StoreVerdict(ctx, claim, testVerdict(model.VerdictUnverifiable, model.ConfidenceLow)); err != nil {
		t.Fatalf("Expected store to succeed, got %v", err)
	}
	if _, _, err := s.Lookup(ctx, "revised claim"); err != nil {
		t.Fatalf("Expected lookup to succeed, got %v", err)
	}

	// Re-verification replaces the verdict but keeps the counter
	if err := s.StoreVerdict(ctx, claim, testVerdict(model.VerdictFalse, model.ConfidenceHigh)); err != nil {
		t.Fatalf("Expected upsert to succeed, got %v", err)
	}

	verdict, found, err := s.Lookup(ctx, "revised claim")
	if err != nil || !found {
		t.Fatalf("Expected hit after upsert, found=%v err=%v", found, err)
	}
	if verdict.Label != model.VerdictFalse {
		t.Errorf("Expected replaced verdict FALSE, got %s", verdict.Label)
	}

	var count int
	row := s.db.QueryRow(`SELECT access_count FROM verified_facts WHERE claim_hash = ?`, Fingerprint("revised claim"))
	if err := row.Scan(&count); err != nil {
		t.Fatalf("Expected access count row, got %v", err)
	}
	// 1 from insert + 1 lookup before upsert + 1 after; upsert itself adds nothing
	if count != 3 {
		t.Errorf("Expected access count 3, got %d", count)
	}
}

func testAnalysis(postID string, claims []model.Claim, verdicts []model.Verdict) *model.PostAnalysis {
	return &model.PostAnalysis{
		PostID:             postID,
		PostText:           "post text",
		Claims:             claims,
		Verdicts:           verdicts,
		OverallCredibility: model.ConfidenceHigh,
		AnalyzedAt:         time.Now().UTC(),
		TopicSensitivity:   "normal",
	}
}

func TestStore_RecordAndHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	claims := []model.Claim{{ID: "cl1", Text: "claim one", Type: model.ClaimTypeEvent, Confidence: 0.6}}
	verdicts := []model.Verdict{testVerdict(model.VerdictTrue, model.ConfidenceHigh)}
	analysis := testAnalysis("p1", claims, verdicts)
	analysis.PotentialMisinfo = true

	if err := s.RecordPostAnalysis(ctx, analysis, model.ConflictContext{InvolvesCasualties: true}); err != nil {
		t.Fatalf("Expected record to succeed, got %v", err)
	}

	records, err := s.History(ctx, 7)
	if err != nil {
		t.Fatalf("Expected history, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].PostID != "p1" || records[0].ClaimCount != 1 || !records[0].PotentialMisinfo {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestStore_Trending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repeated := model.Claim{Text: "The blockade was lifted"}
	for i, postID := range []string{"p1", "p2", "p3"} {
		claim := repeated
		claim.ID = postID + "-claim"
		once := model.Claim{ID: postID + "-unique", Text: "unique to " + postID}
		analysis := testAnalysis(postID, []model.Claim{claim, once}, nil)
		if err := s.RecordPostAnalysis(ctx, analysis, model.ConflictContext{}); err != nil {
			t.Fatalf("Expected record %d to succeed, got %v", i, err)
		}
	}
	if err := s.StoreVerdict(ctx, repeated, testVerdict(model.VerdictDisputed, model.ConfidenceMedium)); err != nil {
		t.Fatalf("Expected store to succeed, got %v", err)
	}

	trending, err := s.Trending(ctx, 7, 10)
	if err != nil {
		t.Fatalf("Expected trending, got %v", err)
	}
	if len(trending) != 1 {
		t.Fatalf("Expected only the repeated claim to trend, got %d", len(trending))
	}
	if trending[0].Text != "The blockade was lifted" || trending[0].Frequency != 3 {
		t.Errorf("Unexpected trending entry: %+v", trending[0])
	}
	if trending[0].Verdict != model.VerdictDisputed {
		t.Errorf("Expected cached verdict joined in, got %q", trending[0].Verdict)
	}
}

func TestStore_CacheStatistics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.StoreVerdict(ctx, model.Claim{Text: "a"}, testVerdict(model.VerdictTrue, model.ConfidenceHigh)); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreVerdict(ctx, model.Claim{Text: "b"}, testVerdict(model.VerdictFalse, model.ConfidenceHigh)); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreVerdict(ctx, model.Claim{Text: "c"}, testVerdict(model.VerdictTrue, model.ConfidenceLow)); err != nil {
		t.Fatal(err)
	}

	stats, err := s.CacheStatistics(ctx)
	if err != nil {
		t.Fatalf("Expected statistics, got %v", err)
	}
	if stats.TotalCached != 3 {
		t.Errorf("Expected 3 cached, got %d", stats.TotalCached)
	}
	if stats.AvgAccessCount != 1.0 {
		t.Errorf("Expected average access count 1.0, got %f", stats.AvgAccessCount)
	}
	if stats.RecentlyAccessed != 3 {
		t.Errorf("Expected 3 recently accessed, got %d", stats.RecentlyAccessed)
	}
	if stats.ConfidenceDistribution["high"] != 2 || stats.ConfidenceDistribution["low"] != 1 {
		t.Errorf("Unexpected distribution: %v", stats.ConfidenceDistribution)
	}
}

func TestStore_Sweep(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	// Old, accessed once: swept. Old, accessed often: kept.
	old := testVerdict(model.VerdictTrue, model.ConfidenceHigh)
	old.VerifiedAt = base
	if err := s.StoreVerdict(ctx, model.Claim{Text: "old rarely used"}, old); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreVerdict(ctx, model.Claim{Text: "old heavily used"}, old); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := s.Lookup(ctx, "old heavily used"); err != nil {
			t.Fatal(err)
		}
	}

	// 100 days later both are past the 90-day retention window
	s.now = func() time.Time { return base.AddDate(0, 0, 100) }

	fresh := testVerdict(model.VerdictTrue, model.ConfidenceHigh)
	fresh.VerifiedAt = s.now()
	if err := s.StoreVerdict(ctx, model.Claim{Text: "fresh claim"}, fresh); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Sweep(ctx, 90)
	if err != nil {
		t.Fatalf("Expected sweep to succeed, got %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 row removed, got %d", removed)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM verified_facts`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected heavily-used and fresh entries kept, got %d rows", count)
	}
}

func TestStore_SourceReliability(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, accurate := range []bool{true, true, false} {
		if err := s.UpdateSourceReliability(ctx, "reuters.com", accurate); err != nil {
			t.Fatalf("Expected update to succeed, got %v", err)
		}
	}

	var checks, accurate int
	row := s.db.QueryRow(`SELECT checks, accurate FROM source_reliability WHERE domain = ?`, "reuters.com")
	if err := row.Scan(&checks, &accurate); err != nil {
		t.Fatalf("Expected reliability row, got %v", err)
	}
	if checks != 3 || accurate != 2 {
		t.Errorf("Expected 3 checks with 2 accurate, got %d/%d", checks, accurate)
	}
}

func TestStore_DailyMetrics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	analysis := testAnalysis("p1", []model.Claim{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}}, nil)
	analysis.PotentialMisinfo = true
	if err := s.RecordDailyMetrics(ctx, analysis); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordDailyMetrics(ctx, analysis); err != nil {
		t.Fatal(err)
	}

	var posts, claims, misinfo int
	day := analysis.AnalyzedAt.UTC().Format("2006-01-02")
	row := s.db.QueryRow(`SELECT posts_analyzed, claims_extracted, misinfo_detected FROM fact_check_metrics WHERE day = ?`, day)
	if err := row.Scan(&posts, &claims, &misinfo); err != nil {
		t.Fatalf("Expected metrics row, got %v", err)
	}
	if posts != 2 || claims != 4 || misinfo != 2 {
		t.Errorf("Expected 2 posts, 4 claims, 2 misinfo, got %d/%d/%d", posts, claims, misinfo)
	}
}
