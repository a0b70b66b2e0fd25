package store

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kfadel/claimlens/internal/model"
)

// CachedStore fronts a Store with an in-process hot layer so repeated claims
// within one run skip SQLite reads. Writes always go through to SQLite.
type CachedStore struct {
	*Store
	hot *cache.Cache
}

// NewCachedStore wraps a Store with an in-memory layer
func NewCachedStore(s *Store, ttl, cleanup time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &CachedStore{
		Store: s,
		hot:   cache.New(ttl, cleanup),
	}
}

// Lookup checks the hot layer first, then SQLite. SQLite hits are promoted
// into the hot layer. Access accounting happens on both paths. Hot entries
// are checked against the freshness window too, since the layer's TTL runs
// from promotion time rather than verification time.
func (c *CachedStore) Lookup(ctx context.Context, claimText string) (*model.Verdict, bool, error) {
	hash := Fingerprint(claimText)

	if v, ok := c.hot.Get(hash); ok {
		verdict, ok := v.(model.Verdict)
		if ok && c.fresh(verdict) {
			if err := c.touchAccess(ctx, hash); err != nil {
				return nil, false, err
			}
			copied := verdict
			return &copied, true, nil
		}
		c.hot.Delete(hash)
	}

	verdict, found, err := c.Store.Lookup(ctx, claimText)
	if err != nil || !found {
		return nil, found, err
	}
	c.hot.SetDefault(hash, *verdict)
	return verdict, true, nil
}

// StoreVerdict writes through to SQLite and refreshes the hot layer
func (c *CachedStore) StoreVerdict(ctx context.Context, claim model.Claim, verdict model.Verdict) error {
	if err := c.Store.StoreVerdict(ctx, claim, verdict); err != nil {
		return err
	}
	c.hot.SetDefault(Fingerprint(claim.Text), verdict)
	return nil
}

// fresh reports whether a verdict's verification time is inside the window
func (c *CachedStore) fresh(verdict model.Verdict) bool {
	cutoff := c.now().UTC().AddDate(0, 0, -c.freshnessDays)
	return verdict.VerifiedAt.After(cutoff)
}

func (c *CachedStore) touchAccess(ctx context.Context, hash string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE verified_facts
		SET access_count = access_count + 1, last_accessed = ?
		WHERE claim_hash = ?`,
		c.now().UTC().Format(timeLayout), hash)
	if err != nil {
		return fmt.Errorf("record cache access: %w", err)
	}
	return nil
}
