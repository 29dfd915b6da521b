package ident

import (
	"context"
	"encoding/json"
	"time"

	"github.com/crn-tools/crnident/pkg/cache"
	"github.com/crn-tools/crnident/pkg/network"
	"github.com/crn-tools/crnident/pkg/observability"
)

// CachedSearcher runs pairwise searches through a result cache. Keys cover
// the content hashes of both networks and the search parameters, so a cached
// outcome is only reused when it answers exactly the question being asked.
//
// Only definite outcomes are stored: a found assignment, or a confirmed
// NONE. An undetermined search is never cached, since a later call with the
// same budget deserves the chance to be interrupted differently and a call
// with a larger budget asks a different question entirely.
type CachedSearcher struct {
	Cache cache.Cache
	Keyer cache.Keyer

	// TTL bounds how long outcomes stay cached. Zero means no expiry.
	TTL time.Duration
}

// NewCachedSearcher wraps a cache with the default keyer.
func NewCachedSearcher(c cache.Cache) *CachedSearcher {
	return &CachedSearcher{Cache: c, Keyer: cache.NewDefaultKeyer()}
}

// cachedOutcome is the stored form of a definite search outcome.
type cachedOutcome struct {
	Match     bool  `json:"match"`
	Species   []int `json:"species,omitempty"`
	Reactions []int `json:"reactions,omitempty"`
}

// Search behaves like [Search] but consults the cache first. Cache failures
// are not fatal: a broken backend degrades to an uncached search.
func (s *CachedSearcher) Search(ctx context.Context, ref, target *network.Network, opts Options) (*Assignment, error) {
	a, _, err := s.SearchWithInfo(ctx, ref, target, opts)
	return a, err
}

// SearchWithInfo is Search plus a flag reporting whether the outcome came
// from the cache.
func (s *CachedSearcher) SearchWithInfo(ctx context.Context, ref, target *network.Network, opts Options) (*Assignment, bool, error) {
	if s.Cache == nil {
		a, err := Search(ctx, ref, target, opts)
		return a, false, err
	}
	keyer := s.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.PairKey(opts.Relation.String(), opts.Mode.String(),
		ref.ContentHash(), target.ContentHash(), opts.Budget)

	if data, hit, err := s.Cache.Get(ctx, key); err == nil && hit {
		var out cachedOutcome
		if err := json.Unmarshal(data, &out); err == nil {
			observability.Cache().OnCacheHit(ctx, "pair")
			if !out.Match {
				return nil, true, nil
			}
			return &Assignment{Species: out.Species, Reactions: out.Reactions}, true, nil
		}
		// Corrupt entry: drop it and fall through to a fresh search.
		_ = s.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "pair")

	a, err := Search(ctx, ref, target, opts)
	if err != nil {
		// Undetermined and transport errors alike: nothing definite to store.
		return nil, false, err
	}

	out := cachedOutcome{Match: a != nil}
	if a != nil {
		out.Species = a.Species
		out.Reactions = a.Reactions
	}
	if data, merr := json.Marshal(out); merr == nil {
		if serr := s.Cache.Set(ctx, key, data, s.TTL); serr == nil {
			observability.Cache().OnCacheSet(ctx, "pair", len(data))
		}
	}
	return a, false, nil
}
