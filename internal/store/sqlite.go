// Package store persists verdicts and post analyses in SQLite, fronted by an
// in-memory hot layer. Cached verdicts are keyed by a normalized fingerprint
// of the claim text and carry access accounting for the retention sweep.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kfadel/claimlens/internal/model"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339

const schema = `
CREATE TABLE IF NOT EXISTS verified_facts (
	claim_hash       TEXT PRIMARY KEY,
	claim_text       TEXT NOT NULL,
	verdict          TEXT NOT NULL,
	confidence       TEXT NOT NULL,
	explanation      TEXT,
	evidence_summary TEXT,
	sources          TEXT,
	limitations      TEXT,
	context_needed   TEXT,
	sensitive_topic  INTEGER NOT NULL DEFAULT 0,
	verified_at      TEXT NOT NULL,
	last_accessed    TEXT NOT NULL,
	access_count     INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_verified_facts_verified_at ON verified_facts(verified_at);

CREATE TABLE IF NOT EXISTS post_analyses (
	post_id             TEXT PRIMARY KEY,
	post_url            TEXT,
	post_text           TEXT NOT NULL,
	claim_count         INTEGER NOT NULL,
	overall_credibility TEXT NOT NULL,
	potential_misinfo   INTEGER NOT NULL DEFAULT 0,
	requires_review     INTEGER NOT NULL DEFAULT 0,
	topic_sensitivity   TEXT NOT NULL DEFAULT 'normal',
	warning_flags       TEXT,
	analyzed_at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_post_analyses_analyzed_at ON post_analyses(analyzed_at);

CREATE TABLE IF NOT EXISTS claims (
	id                    TEXT PRIMARY KEY,
	post_id               TEXT NOT NULL REFERENCES post_analyses(post_id),
	claim_hash            TEXT NOT NULL,
	claim_text            TEXT NOT NULL,
	claim_type            TEXT NOT NULL,
	extraction_confidence REAL NOT NULL,
	location              TEXT,
	temporal_context      TEXT,
	created_at            TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claims_post ON claims(post_id);
CREATE INDEX IF NOT EXISTS idx_claims_hash ON claims(claim_hash);

CREATE TABLE IF NOT EXISTS verdicts (
	claim_id         TEXT PRIMARY KEY REFERENCES claims(id),
	verdict          TEXT NOT NULL,
	confidence       TEXT NOT NULL,
	explanation      TEXT,
	evidence_summary TEXT,
	sources          TEXT,
	limitations      TEXT,
	sensitive_topic  INTEGER NOT NULL DEFAULT 0,
	verified_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS conflict_context (
	post_id                    TEXT PRIMARY KEY REFERENCES post_analyses(post_id),
	involves_casualties        INTEGER NOT NULL DEFAULT 0,
	involves_settlements       INTEGER NOT NULL DEFAULT 0,
	involves_international_law INTEGER NOT NULL DEFAULT 0,
	involves_historical_events INTEGER NOT NULL DEFAULT 0,
	involves_territory_claims  INTEGER NOT NULL DEFAULT 0,
	involves_human_rights      INTEGER NOT NULL DEFAULT 0,
	time_period                TEXT,
	geographical_scope         TEXT
);

CREATE TABLE IF NOT EXISTS source_reliability (
	domain       TEXT PRIMARY KEY,
	checks       INTEGER NOT NULL DEFAULT 0,
	accurate     INTEGER NOT NULL DEFAULT 0,
	last_updated TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fact_check_metrics (
	day              TEXT PRIMARY KEY,
	posts_analyzed   INTEGER NOT NULL DEFAULT 0,
	claims_extracted INTEGER NOT NULL DEFAULT 0,
	misinfo_detected INTEGER NOT NULL DEFAULT 0,
	review_flagged   INTEGER NOT NULL DEFAULT 0
);
`

// Store is the SQLite-backed verdict cache and analysis archive
type Store struct {
	db            *sql.DB
	freshnessDays int
	now           func() time.Time
}

// CacheStatistics summarizes the verdict cache
type CacheStatistics struct {
	TotalCached            int            `json:"total_cached"`
	AvgAccessCount         float64        `json:"avg_access_count"`
	RecentlyAccessed       int            `json:"recently_accessed"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
}

// TrendingClaim is a claim text seen in more than one analyzed post
type TrendingClaim struct {
	Text      string             `json:"claim_text"`
	Frequency int                `json:"frequency"`
	Verdict   model.VerdictLabel `json:"verdict,omitempty"`
}

// AnalysisRecord is one archived post analysis, without the full claim detail
type AnalysisRecord struct {
	PostID             string
	PostURL            string
	PostText           string
	ClaimCount         int
	OverallCredibility model.ConfidenceLevel
	PotentialMisinfo   bool
	RequiresReview     bool
	TopicSensitivity   string
	AnalyzedAt         time.Time
}

// Open opens (creating if needed) the store at path
func Open(path string, freshnessDays int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent batch workers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	if freshnessDays <= 0 {
		freshnessDays = 30
	}

	return &Store{
		db:            db,
		freshnessDays: freshnessDays,
		now:           time.Now,
	}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint returns the cache key for a claim text: sha256 of the trimmed,
// lowercased text. Case and surrounding whitespace never split cache entries.
func Fingerprint(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached verdict for a claim text if one exists within the
// freshness window. A hit bumps the access counter.
func (s *Store) Lookup(ctx context.Context, claimText string) (*model.Verdict, bool, error) {
	hash := Fingerprint(claimText)
	cutoff := s.now().UTC().AddDate(0, 0, -s.freshnessDays).Format(timeLayout)

	row := s.db.QueryRowContext(ctx, `
		SELECT verdict, confidence, explanation, evidence_summary, sources,
		       limitations, context_needed, sensitive_topic, verified_at
		FROM verified_facts
		WHERE claim_hash = ? AND verified_at > ?`,
		hash, cutoff)

	var (
		verdict     model.Verdict
		sourcesJSON sql.NullString
		limitations sql.NullString
		contextNeed sql.NullString
		explanation sql.NullString
		summary     sql.NullString
		sensitive   int
		verifiedAt  string
	)
	err := row.Scan(&verdict.Label, &verdict.Confidence, &explanation, &summary,
		&sourcesJSON, &limitations, &contextNeed, &sensitive, &verifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup verdict: %w", err)
	}

	verdict.Explanation = explanation.String
	verdict.EvidenceSummary = summary.String
	verdict.Limitations = limitations.String
	verdict.ContextNeeded = contextNeed.String
	verdict.SensitiveTopic = sensitive != 0
	if t, perr := time.Parse(timeLayout, verifiedAt); perr == nil {
		verdict.VerifiedAt = t
	}
	if sourcesJSON.Valid && sourcesJSON.String != "" {
		if jerr := json.Unmarshal([]byte(sourcesJSON.String), &verdict.SourcesConsulted); jerr != nil {
			verdict.SourcesConsulted = nil
		}
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE verified_facts
		SET access_count = access_count + 1, last_accessed = ?
		WHERE claim_hash = ?`,
		s.now().UTC().Format(timeLayout), hash)
	if err != nil {
		return nil, false, fmt.Errorf("record cache access: %w", err)
	}

	return &verdict, true, nil
}

// StoreVerdict caches a verdict under the claim's fingerprint. Re-verifying
// the same claim replaces the cached verdict but keeps its access accounting.
func (s *Store) StoreVerdict(ctx context.Context, claim model.Claim, verdict model.Verdict) error {
	sourcesJSON, err := json.Marshal(verdict.SourcesConsulted)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	now := s.now().UTC().Format(timeLayout)
	verifiedAt := verdict.VerifiedAt
	if verifiedAt.IsZero() {
		verifiedAt = s.now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verified_facts (
			claim_hash, claim_text, verdict, confidence, explanation,
			evidence_summary, sources, limitations, context_needed,
			sensitive_topic, verified_at, last_accessed, access_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(claim_hash) DO UPDATE SET
			claim_text       = excluded.claim_text,
			verdict          = excluded.verdict,
			confidence       = excluded.confidence,
			explanation      = excluded.explanation,
			evidence_summary = excluded.evidence_summary,
			sources          = excluded.sources,
			limitations      = excluded.limitations,
			context_needed   = excluded.context_needed,
			sensitive_topic  = excluded.sensitive_topic,
			verified_at      = excluded.verified_at,
			last_accessed    = excluded.last_accessed`,
		Fingerprint(claim.Text), claim.Text, verdict.Label, verdict.Confidence,
		verdict.Explanation, verdict.EvidenceSummary, string(sourcesJSON),
		verdict.Limitations, verdict.ContextNeeded, boolToInt(verdict.SensitiveTopic),
		verifiedAt.UTC().Format(timeLayout), now)
	if err != nil {
		return fmt.Errorf("store verdict: %w", err)
	}
	return nil
}

// RecordPostAnalysis archives a completed analysis: the post row, its claims,
// their verdicts, and the derived conflict context.
func (s *Store) RecordPostAnalysis(ctx context.Context, analysis *model.PostAnalysis, cctx model.ConflictContext) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	flagsJSON, err := json.Marshal(analysis.WarningFlags)
	if err != nil {
		return fmt.Errorf("marshal warning flags: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO post_analyses (
			post_id, post_url, post_text, claim_count, overall_credibility,
			potential_misinfo, requires_review, topic_sensitivity,
			warning_flags, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		analysis.PostID, analysis.PostURL, analysis.PostText, len(analysis.Claims),
		analysis.OverallCredibility, boolToInt(analysis.PotentialMisinfo),
		boolToInt(analysis.RequiresHumanReview), analysis.TopicSensitivity,
		string(flagsJSON), analysis.AnalyzedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("store post analysis: %w", err)
	}

	for i, claim := range analysis.Claims {
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO claims (
				id, post_id, claim_hash, claim_text, claim_type,
				extraction_confidence, location, temporal_context, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			claim.ID, analysis.PostID, Fingerprint(claim.Text), claim.Text,
			claim.Type, claim.Confidence, claim.Location, claim.Temporal,
			analysis.AnalyzedAt.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("store claim: %w", err)
		}

		if i >= len(analysis.Verdicts) {
			continue
		}
		verdict := analysis.Verdicts[i]
		sourcesJSON, merr := json.Marshal(verdict.SourcesConsulted)
		if merr != nil {
			return fmt.Errorf("marshal verdict sources: %w", merr)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO verdicts (
				claim_id, verdict, confidence, explanation, evidence_summary,
				sources, limitations, sensitive_topic, verified_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			claim.ID, verdict.Label, verdict.Confidence, verdict.Explanation,
			verdict.EvidenceSummary, string(sourcesJSON), verdict.Limitations,
			boolToInt(verdict.SensitiveTopic), verdict.VerifiedAt.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("store verdict row: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO conflict_context (
			post_id, involves_casualties, involves_settlements,
			involves_international_law, involves_historical_events,
			involves_territory_claims, involves_human_rights,
			time_period, geographical_scope
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		analysis.PostID, boolToInt(cctx.InvolvesCasualties), boolToInt(cctx.InvolvesSettlements),
		boolToInt(cctx.InvolvesInternationalLaw), boolToInt(cctx.InvolvesHistoricalEvents),
		boolToInt(cctx.InvolvesTerritoryClaims), boolToInt(cctx.InvolvesHumanRights),
		cctx.TimePeriod, cctx.GeographicalScope)
	if err != nil {
		return fmt.Errorf("store conflict context: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis: %w", err)
	}
	return nil
}

// History returns analyses from the last N days, newest first
func (s *Store) History(ctx context.Context, days int) ([]AnalysisRecord, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -days).Format(timeLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, post_url, post_text, claim_count, overall_credibility,
		       potential_misinfo, requires_review, topic_sensitivity, analyzed_at
		FROM post_analyses
		WHERE analyzed_at > ?
		ORDER BY analyzed_at DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []AnalysisRecord
	for rows.Next() {
		var (
			rec        AnalysisRecord
			url        sql.NullString
			misinfo    int
			review     int
			analyzedAt string
		)
		if err := rows.Scan(&rec.PostID, &url, &rec.PostText, &rec.ClaimCount,
			&rec.OverallCredibility, &misinfo, &review, &rec.TopicSensitivity, &analyzedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.PostURL = url.String
		rec.PotentialMisinfo = misinfo != 0
		rec.RequiresReview = review != 0
		if t, perr := time.Parse(timeLayout, analyzedAt); perr == nil {
			rec.AnalyzedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CacheStatistics summarizes the verdict cache state
func (s *Store) CacheStatistics(ctx context.Context) (*CacheStatistics, error) {
	stats := &CacheStatistics{ConfidenceDistribution: make(map[string]int)}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(access_count), 0) FROM verified_facts`)
	if err := row.Scan(&stats.TotalCached, &stats.AvgAccessCount); err != nil {
		return nil, fmt.Errorf("query cache totals: %w", err)
	}

	weekAgo := s.now().UTC().AddDate(0, 0, -7).Format(timeLayout)
	row = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM verified_facts WHERE last_accessed > ?`, weekAgo)
	if err := row.Scan(&stats.RecentlyAccessed); err != nil {
		return nil, fmt.Errorf("query recent access: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT confidence, COUNT(*) FROM verified_facts GROUP BY confidence`)
	if err != nil {
		return nil, fmt.Errorf("query confidence distribution: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var confidence string
		var count int
		if err := rows.Scan(&confidence, &count); err != nil {
			return nil, fmt.Errorf("scan distribution row: %w", err)
		}
		stats.ConfidenceDistribution[confidence] = count
	}
	return stats, rows.Err()
}

// Trending returns claim texts seen in more than one post within the window
func (s *Store) Trending(ctx context.Context, days, limit int) ([]TrendingClaim, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -days).Format(timeLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.claim_text, COUNT(*) AS frequency, COALESCE(MAX(vf.verdict), '')
		FROM claims c
		LEFT JOIN verified_facts vf ON vf.claim_hash = c.claim_hash
		WHERE c.created_at > ?
		GROUP BY c.claim_hash
		HAVING frequency > 1
		ORDER BY frequency DESC
		LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query trending claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trending []TrendingClaim
	for rows.Next() {
		var claim TrendingClaim
		var verdict string
		if err := rows.Scan(&claim.Text, &claim.Frequency, &verdict); err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}
		claim.Verdict = model.VerdictLabel(verdict)
		trending = append(trending, claim)
	}
	return trending, rows.Err()
}

// Sweep deletes cached verdicts older than retentionDays that were accessed
// fewer than twice, and archives out old post analyses. Returns rows removed.
func (s *Store) Sweep(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays).Format(timeLayout)

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM verified_facts
		WHERE verified_at < ? AND access_count < 2`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep verdicts: %w", err)
	}
	removed, _ := res.RowsAffected()

	// Old post rows cascade by hand: claims and verdicts first
	res, err = s.db.ExecContext(ctx, `
		DELETE FROM verdicts WHERE claim_id IN (
			SELECT c.id FROM claims c
			JOIN post_analyses p ON p.post_id = c.post_id
			WHERE p.analyzed_at < ?)`, cutoff)
	if err != nil {
		return removed, fmt.Errorf("sweep verdict rows: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		removed += n
	}

	res, err = s.db.ExecContext(ctx, `
		DELETE FROM claims WHERE post_id IN (
			SELECT post_id FROM post_analyses WHERE analyzed_at < ?)`, cutoff)
	if err != nil {
		return removed, fmt.Errorf("sweep claims: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		removed += n
	}

	for _, table := range []string{"conflict_context", "post_analyses"} {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE post_id IN (
				SELECT post_id FROM post_analyses WHERE analyzed_at < ?)`, cutoff)
		if err != nil {
			return removed, fmt.Errorf("sweep %s: %w", table, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			removed += n
		}
	}

	return removed, nil
}

// UpdateSourceReliability records one observed check outcome for a domain
func (s *Store) UpdateSourceReliability(ctx context.Context, domain string, accurate bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_reliability (domain, checks, accurate, last_updated)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			checks       = checks + 1,
			accurate     = accurate + excluded.accurate,
			last_updated = excluded.last_updated`,
		domain, boolToInt(accurate), s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("update source reliability: %w", err)
	}
	return nil
}

// RecordDailyMetrics folds one analysis into the per-day counters
func (s *Store) RecordDailyMetrics(ctx context.Context, analysis *model.PostAnalysis) error {
	day := analysis.AnalyzedAt.UTC().Format("2006-01-02")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fact_check_metrics (day, posts_analyzed, claims_extracted, misinfo_detected, review_flagged)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			posts_analyzed   = posts_analyzed + 1,
			claims_extracted = claims_extracted + excluded.claims_extracted,
			misinfo_detected = misinfo_detected + excluded.misinfo_detected,
			review_flagged   = review_flagged + excluded.review_flagged`,
		day, len(analysis.Claims), boolToInt(analysis.PotentialMisinfo),
		boolToInt(analysis.RequiresHumanReview))
	if err != nil {
		return fmt.Errorf("record daily metrics: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
