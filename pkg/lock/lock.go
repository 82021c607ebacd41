// Package lock serializes check-then-act sequences on a slot key across
// request handlers, and across processes for the mongo and redis backends.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLockBusy is returned when the key stayed held for the whole wait window.
var ErrLockBusy = errors.New("slot lock is held by another request")

// Lease is a held lock. Release is idempotent and only removes the lock if
// it is still owned by this lease.
type Lease interface {
	Key() string
	Release(ctx context.Context) error
}

type Locker interface {
	Acquire(ctx context.Context, key string) (Lease, error)
}

const (
	initialBackoff = 10 * time.Millisecond
	maxBackoff     = 200 * time.Millisecond
)

// tryFunc makes one acquisition attempt. held=true means someone else owns
// the key and the attempt should be repeated.
type tryFunc func(ctx context.Context) (lease Lease, held bool, err error)

// acquireWithRetry polls try until it succeeds, fails hard, the wait window
// elapses or ctx is done.
func acquireWithRetry(ctx context.Context, wait time.Duration, try tryFunc) (Lease, error) {
	deadline := time.Now().Add(wait)
	backoff := initialBackoff

	for {
		lease, held, err := try(ctx)
		if err != nil {
			return nil, err
		}
		if !held {
			return lease, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrLockBusy
		}
		sleep := min(backoff, remaining)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
