//go:build windows

package session

import (
	"os"
	"sync"
)

var localMu sync.Mutex

// acquireLock acquires thread-level (mutex) lock only.
// No flock on Windows; only logins from this process are serialized.
func acquireLock() (func(), error) {
	localMu.Lock()

	// Ensure directory exists
	dir := StorageDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		localMu.Unlock()
		return nil, err
	}

	return func() {
		localMu.Unlock()
	}, nil
}
