package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the sidecar file that marks an output directory as owned by
// a running converter.
const LockFileName = ".seaice-etl.lock"

// ErrDirLocked is returned when another process holds the directory lock.
var ErrDirLocked = errors.New("output directory is locked by another process")

// DirLock is an advisory, process-wide lock on an output directory.
type DirLock struct {
	lock *flock.Flock
}

// LockDir takes the lock on dir without blocking, creating dir if needed.
func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	l := flock.New(filepath.Join(dir, LockFileName))
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrDirLocked)
	}
	return &DirLock{lock: l}, nil
}

// Path returns the lock file location.
func (d *DirLock) Path() string { return d.lock.Path() }

// Unlock releases the lock. The lock file is left in place.
func (d *DirLock) Unlock() error {
	return d.lock.Unlock()
}
