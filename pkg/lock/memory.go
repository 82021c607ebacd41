package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local locker. It is correct only when a single
// instance serves all writes, and is the backend used by tests.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*memorySlot
	wait  time.Duration
}

type memorySlot struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{
		slots: make(map[string]*memorySlot),
		wait:  wait,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (Lease, error) {
	slot := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.sem <- struct{}{}:
		return &memoryLease{locker: l, key: key, slot: slot}, nil
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(key)
		return nil, ErrLockBusy
	}
}

func (l *MemoryLocker) ref(key string) *memorySlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = &memorySlot{sem: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *MemoryLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

type memoryLease struct {
	locker   *MemoryLocker
	key      string
	slot     *memorySlot
	released sync.Once
}

func (m *memoryLease) Key() string {
	return m.key
}

func (m *memoryLease) Release(ctx context.Context) error {
	m.released.Do(func() {
		<-m.slot.sem
		m.locker.unref(m.key)
	})
	return nil
}
