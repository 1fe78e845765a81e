// Package metricstore persists computed metric runs for trend tracking.
package metricstore

import (
	"sync"

	"github.com/trackline/trackline/internal/contract"
)

// RunStoreManager guards access to the shared RunStore instance.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

// GetRunStore returns the active RunStore.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

// SetRunStore installs the given store as the active one. InitStores
// uses it at startup; tests use it to inject mocks.
func (mgr *RunStoreManager) SetRunStore(store contract.RunStore) {
	mgr.Lock()
	defer mgr.Unlock()
	mgr.runs = store
}
