package cli

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/arthur-debert/githash/pkg/errors"
)

// outputLock guards an output directory against concurrent githash runs.
// The lock file sits next to the directory so it never shows up in a scan.
type outputLock struct {
	flock *flock.Flock
	dir   string
}

func lockPath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	return filepath.Join(filepath.Dir(abs), "."+filepath.Base(abs)+".githash.lock")
}

// lockOutput takes the lock for dir without blocking. It fails with
// ErrLocked when another process holds it.
func lockOutput(dir string) (*outputLock, error) {
	path := lockPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to lock %s", dir)
	}
	l := &outputLock{flock: flock.New(path), dir: dir}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to lock %s", dir)
	}
	if !acquired {
		return nil, errors.Newf(errors.ErrLocked, MsgErrLocked, dir)
	}
	return l, nil
}

func (l *outputLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to release lock on %s", l.dir)
	}
	return nil
}
