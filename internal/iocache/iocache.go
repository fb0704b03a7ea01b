// Package iocache persists cached reports and validation history.
package iocache

import (
	"sync"

	"github.com/huangsam/storecheck/internal/contract"
)

// StoreManager holds the report cache and the history store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	reports      contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetReportStore returns the report CacheStore.
func (mgr *StoreManager) GetReportStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.reports
}

// GetHistoryStore returns the HistoryStore.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
