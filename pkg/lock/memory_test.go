package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryLocker_SerializesSameKey(t *testing.T) {
	locker := NewMemoryLocker(2 * time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := locker.Acquire(ctx, "room:1:2024-03-01")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = lease.Release(ctx)
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("expected at most one holder at a time, saw %d", maxInside)
	}
	if len(locker.slots) != 0 {
		t.Errorf("expected slots to be cleaned up, got %d", len(locker.slots))
	}
}

func TestMemoryLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewMemoryLocker(50 * time.Millisecond)
	ctx := context.Background()

	a, err := locker.Acquire(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Release(ctx)

	b, err := locker.Acquire(ctx, "b")
	if err != nil {
		t.Fatalf("second key should not block: %v", err)
	}
	_ = b.Release(ctx)
}

func TestMemoryLocker_BusyAfterWait(t *testing.T) {
	locker := NewMemoryLocker(20 * time.Millisecond)
	ctx := context.Background()

	held, err := locker.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer held.Release(ctx)

	_, err = locker.Acquire(ctx, "k")
	if !errors.Is(err, ErrLockBusy) {
		t.Errorf("expected ErrLockBusy, got %v", err)
	}
}

func TestMemoryLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker(20 * time.Millisecond)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = lease.Release(ctx)
	_ = lease.Release(ctx)

	again, err := locker.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("expected key to be free after release: %v", err)
	}
	_ = again.Release(ctx)
}

func TestAcquireWithRetry_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := acquireWithRetry(ctx, time.Second, func(ctx context.Context) (Lease, bool, error) {
		return nil, true, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAcquireWithRetry_EventuallySucceeds(t *testing.T) {
	attempts := 0
	lease, err := acquireWithRetry(context.Background(), time.Second, func(ctx context.Context) (Lease, bool, error) {
		attempts++
		if attempts < 3 {
			return nil, true, nil
		}
		return &memoryLease{key: "k"}, false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lease.Key() != "k" || attempts != 3 {
		t.Errorf("unexpected lease %v after %d attempts", lease.Key(), attempts)
	}
}
