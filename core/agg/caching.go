package agg

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"go.uber.org/zap"
)

// currentCacheVersion defines the version of the cached commit payload
const currentCacheVersion = 1

// cacheMaxAge is how long a cached history stays usable
const cacheMaxAge = 7 * 24 * time.Hour

// CachedProvider memoizes another provider's raw commits. Entries are keyed
// by repository state, so any new commit or moved ref is a miss. Only
// retrieval is cached; every aggregate is still computed fresh.
type CachedProvider struct {
	inner  contract.CommitProvider
	store  contract.CacheStore
	window contract.Window
}

var _ contract.CommitProvider = &CachedProvider{} // Compile-time check

// NewCachedProvider wraps inner with the given store.
func NewCachedProvider(inner contract.CommitProvider, store contract.CacheStore, window contract.Window) *CachedProvider {
	return &CachedProvider{inner: inner, store: store, window: window}
}

// Name implements the CommitProvider interface.
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// RepoState implements the CommitProvider interface.
func (p *CachedProvider) RepoState(ctx context.Context, repo string) (string, error) {
	return p.inner.RepoState(ctx, repo)
}

// ListCommits implements the CommitProvider interface.
func (p *CachedProvider) ListCommits(ctx context.Context, repo string, branches []string) ([]schema.RawCommit, error) {
	if p.store == nil {
		return p.inner.ListCommits(ctx, repo, branches)
	}

	state, err := p.inner.RepoState(ctx, repo)
	if err != nil {
		if errors.Is(err, contract.ErrNotARepository) {
			return nil, err
		}
		// Without a state we cannot key safely, so skip the cache
		contract.Logger().Debug("repo state unavailable, bypassing cache", zap.String("repo", repo), zap.Error(err))
		return p.inner.ListCommits(ctx, repo, branches)
	}

	key := generateCacheKey(p.inner.Name(), repo, state, branches, p.window)
	if commits, ok := checkCacheHit(p.store, key); ok {
		contract.Logger().Debug("cache hit", zap.String("repo", repo))
		return commits, nil
	}
	return p.computeAndStore(ctx, repo, branches, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) ([]schema.RawCommit, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil, false
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil, false
	}
	var commits []schema.RawCommit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, false
	}
	return commits, true
}

// computeAndStore fetches from the inner provider and stores the result
func (p *CachedProvider) computeAndStore(ctx context.Context, repo string, branches []string, key string) ([]schema.RawCommit, error) {
	commits, err := p.inner.ListCommits(ctx, repo, branches)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(commits); err == nil {
		if err := p.store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.Logger().Warn("cache write failed", zap.String("repo", repo), zap.Error(err))
		}
	}
	return commits, nil
}

// generateCacheKey creates a unique key for a retrieval request. The window
// bounds are keyed to the second since providers filter on the exact window.
func generateCacheKey(provider, repo, state string, branches []string, window contract.Window) string {
	var since, until int64
	if !window.Since.IsZero() {
		since = window.Since.Unix()
	}
	if !window.Until.IsZero() {
		until = window.Until.Unix()
	}
	key := fmt.Sprintf("%s:%s:%s:%d:%d:%s",
		provider,
		repo,
		strings.Join(branches, ","),
		since,
		until,
		state,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
