package mirror

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrDestinationLocked means another instance is already mirroring into the
// same destination directory.
var ErrDestinationLocked = errors.New("destination directory is locked by another process")

// DirLock serializes runs against one destination directory. The lock file
// lives in the system temp directory, keyed by the destination path; the
// destination itself holds nothing but backup files.
type DirLock struct {
	flock *flock.Flock
}

func NewDirLock(dir string) *DirLock {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	h := fnv.New32a()
	h.Write([]byte(filepath.Clean(dir)))
	lockPath := filepath.Join(os.TempDir(), fmt.Sprintf("hubitat-backup-%08x.lock", h.Sum32()))
	return &DirLock{flock: flock.New(lockPath)}
}

// Path returns the lock file location.
func (l *DirLock) Path() string {
	return l.flock.Path()
}

func (l *DirLock) Lock() error {
	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock destination: %w", err)
	}
	if !locked {
		return ErrDestinationLocked
	}
	return nil
}

func (l *DirLock) Unlock() error {
	if !l.flock.Locked() {
		return nil
	}
	// the lock file stays in place; removing it would let a late starter
	// holding the old inode and a fresh instance hold the lock at once
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock destination: %w", err)
	}
	return nil
}
