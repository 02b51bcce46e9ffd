package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when the ledger's advisory lock cannot be
// acquired within the configured timeout.
var ErrLocked = errors.New("ledger file is locked by another writer")

const (
	// lockRetry is the poll interval while waiting for the lock.
	lockRetry  = 500 * time.Millisecond
	lockSuffix = ".lock"
)

// Options tunes the advisory lock discipline.
type Options struct {
	// LockTimeout bounds the wait for the lock; zero waits indefinitely.
	LockTimeout time.Duration
}

// fileLock is a cross-process advisory lock on a sidecar ".lock" file.
// All cooperating writers (including other processes) must go through the
// same protocol; it does not protect against writers that bypass it.
type fileLock struct {
	fl      *flock.Flock
	timeout time.Duration
}

func newFileLock(ledgerPath string, opts Options) *fileLock {
	return &fileLock{
		fl:      flock.New(ledgerPath + lockSuffix),
		timeout: opts.LockTimeout,
	}
}

func (l *fileLock) acquire() (release func(), err error) {
	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	ok, err := l.fl.TryLockContext(ctx, lockRetry)
	if !ok {
		return nil, fmt.Errorf("%w: %s (waited %s): %v", ErrLocked, l.fl.Path(), l.timeout, err)
	}

	return func() { _ = l.fl.Unlock() }, nil
}
