package teloquent

import (
	"context"
	"sync"
)

var (
	defaultMu sync.RWMutex
	defaultDB *DB
)

// Initialize installs db as the process default, used by model types not bound to a DB.
// A second call is ignored with a warning until Reset is called.
func Initialize(db *DB) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultDB != nil {
		defaultDB.Logger.Warn(context.Background(), "teloquent is already initialized, call Reset before initializing again")
		return
	}
	defaultDB = db
}

// Default returns the process default DB, nil if Initialize has not been called
func Default() *DB {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultDB
}

// IsInitialized reports whether a default DB is installed
func IsInitialized() bool {
	return Default() != nil
}

// Reset removes the process default DB
func Reset() {
	defaultMu.Lock()
	defaultDB = nil
	defaultMu.Unlock()
}
