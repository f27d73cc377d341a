package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"pixelripper/pkg/errors"
)

// Lock guards an output tree against a second concurrent run. The lock
// file lives in the temp directory so the tree holds only media.
type Lock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for root
func LockPath(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "pixelripper-"+hex.EncodeToString(sum[:8])+".lock")
}

// AcquireLock takes the lock for root without blocking
func AcquireLock(root string) (*Lock, error) {
	p := LockPath(root)
	l := flock.New(p)
	ok, err := l.TryLock()
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeLock, "acquire output lock", err)
	}
	if !ok {
		return nil, errors.New(errors.ErrorTypeLock, "another run is writing to "+root)
	}
	return &Lock{path: p, lock: l}, nil
}

// Path returns the lock file path
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks. The file stays behind so a waiting run locks the same inode.
func (l *Lock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return errors.Wrap(errors.ErrorTypeLock, "release output lock", err)
	}
	return nil
}
