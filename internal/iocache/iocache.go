// Package iocache persists retrieved commit history and tracked runs.
package iocache

import (
	"sync"

	"github.com/huangsam/githours/internal/contract"
)

// CacheStoreManager holds the commit cache and the run tracking store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	commits      contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetCommitStore returns the commit CacheStore, or nil when caching is off.
func (mgr *CacheStoreManager) GetCommitStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.commits
}

// GetAnalysisStore returns the run tracking store, or nil when tracking is off.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
