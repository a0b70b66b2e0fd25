// Package verify gathers and grades evidence for individual claims.
package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kfadel/claimlens/internal/model"
	"github.com/kfadel/claimlens/internal/search"
	"github.com/kfadel/claimlens/internal/sources"
)

const (
	// maxSources bounds the merged evidence bundle handed downstream
	maxSources = 15

	hitsPerFactChecker = 3
	hitsPerConflictOrg = 2
	hitsPerNewsSite    = 2
	newsSiteLimit      = 5
)

// tierFunc queries one source tier for a claim
type tierFunc func(ctx context.Context, claim string) ([]model.EvidenceSource, error)

// Orchestrator fans a claim out across the three source tiers concurrently
// and merges the results into a single evidence bundle. One tier failing
// never cancels or delays the others; the operation itself never fails.
type Orchestrator struct {
	gateway     search.Gateway
	registry    *sources.Registry
	analyzer    *Analyzer
	callTimeout time.Duration
	tiers       []tierFunc
}

// NewOrchestrator creates an orchestrator over the given gateway and catalog
func NewOrchestrator(gateway search.Gateway, registry *sources.Registry, callTimeout time.Duration) *Orchestrator {
	if callTimeout == 0 {
		callTimeout = 15 * time.Second
	}

	o := &Orchestrator{
		gateway:     gateway,
		registry:    registry,
		analyzer:    NewAnalyzer(),
		callTimeout: callTimeout,
	}
	o.tiers = []tierFunc{
		o.searchFactCheckers,
		o.searchConflictOrgs,
		o.searchNews,
	}
	return o
}

// Verify gathers evidence for one claim. Total gateway unavailability yields
// an Evidence with zero sources, which grades as insufficient downstream.
func (o *Orchestrator) Verify(ctx context.Context, claimText string, claimType model.ClaimType) model.Evidence {
	type tierResult struct {
		sources []model.EvidenceSource
		err     error
	}

	results := make([]tierResult, len(o.tiers))
	var wg sync.WaitGroup

	for i, tier := range o.tiers {
		wg.Add(1)
		go func(idx int, fn tierFunc) {
			defer wg.Done()
			srcs, err := fn(ctx, claimText)
			results[idx] = tierResult{sources: srcs, err: err}
		}(i, tier)
	}
	wg.Wait()

	// Failed tiers contribute nothing; partial evidence is still evidence.
	var merged []model.EvidenceSource
	for _, r := range results {
		if r.err != nil {
			continue
		}
		merged = append(merged, r.sources...)
	}

	merged = dedupeByURL(merged)
	if len(merged) > maxSources {
		merged = merged[:maxSources]
	}

	return o.analyzer.Analyze(claimText, merged)
}

func (o *Orchestrator) searchFactCheckers(ctx context.Context, claim string) ([]model.EvidenceSource, error) {
	var found []model.EvidenceSource
	for site, info := range o.registry.FactCheckers() {
		hits, err := o.query(ctx, site, claim, hitsPerFactChecker)
		if err != nil {
			return found, err
		}
		for _, hit := range hits {
			found = append(found, sourceFromHit(hit, site, info))
		}
	}
	return found, nil
}

func (o *Orchestrator) searchConflictOrgs(ctx context.Context, claim string) ([]model.EvidenceSource, error) {
	var found []model.EvidenceSource
	for site, info := range o.registry.ConflictOrgs() {
		hits, err := o.query(ctx, site, claim, hitsPerConflictOrg)
		if err != nil {
			return found, err
		}
		for _, hit := range hits {
			found = append(found, sourceFromHit(hit, site, info))
		}
	}
	return found, nil
}

func (o *Orchestrator) searchNews(ctx context.Context, claim string) ([]model.EvidenceSource, error) {
	sites := o.registry.NewsSites()
	if len(sites) > newsSiteLimit {
		sites = sites[:newsSiteLimit]
	}

	var found []model.EvidenceSource
	for _, site := range sites {
		hits, err := o.query(ctx, site, claim, hitsPerNewsSite)
		if err != nil {
			return found, err
		}
		info := sources.Info{
			Credibility: o.registry.NewsCredibility(site),
			Bias:        o.registry.NewsBias(site),
			Type:        model.SourceTypeNews,
		}
		for _, hit := range hits {
			found = append(found, sourceFromHit(hit, site, info))
		}
	}
	return found, nil
}

// query runs one bounded site-scoped gateway call
func (o *Orchestrator) query(ctx context.Context, site, claim string, maxHits int) ([]search.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	return o.gateway.Search(callCtx, fmt.Sprintf("site:%s %s", site, claim), maxHits), nil
}

func sourceFromHit(hit search.Hit, site string, info sources.Info) model.EvidenceSource {
	return model.EvidenceSource{
		URL:         hit.URL,
		Title:       hit.Title,
		Domain:      site,
		Credibility: info.Credibility,
		Bias:        info.Bias,
		PublishedAt: hit.PublishedAt,
		Excerpt:     hit.Snippet,
		Type:        info.Type,
	}
}

func dedupeByURL(srcs []model.EvidenceSource) []model.EvidenceSource {
	seen := make(map[string]bool)
	var unique []model.EvidenceSource
	for _, s := range srcs {
		if !seen[s.URL] {
			seen[s.URL] = true
			unique = append(unique, s)
		}
	}
	return unique
}
