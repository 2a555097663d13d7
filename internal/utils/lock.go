package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileSuffix = ".lock"

// ScanLock serializes scans that share an output directory. Two pipelines
// writing the same checkpoints would corrupt the resume state.
type ScanLock struct {
	lock *flock.Flock
	path string
}

// NewScanLock creates a lock guarding the given output directory. The lock
// file sits next to the directory, so wiping the directory to restart a
// scan cannot release a lock someone else holds.
func NewScanLock(dir string) (*ScanLock, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve output directory: %w", err)
	}
	lockPath := abs + lockFileSuffix
	return &ScanLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}, nil
}

// Lock acquires the scan lock, waiting if necessary.
// It will print a message if it has to wait.
func (l *ScanLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}

	if !locked {
		fmt.Fprintf(os.Stderr, "Another steambadgescan process is using this output directory, waiting for it to finish...\n")
		if err := l.lock.Lock(); err != nil {
			return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
		}
	}
	return nil
}

// Unlock releases the scan lock.
func (l *ScanLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		// Suppress error if the lock file doesn't exist, as it means we don't hold the lock.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
