package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultProvisionLeaseTTL = 10 * time.Minute

// MemoryRequestLocker is an in-process RequestLocker keyed by request id.
// A lease expires after its TTL even if the holder never releases it, so a
// crashed workflow cannot pin its request forever.
type MemoryRequestLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	nowFn func() time.Time
}

func NewMemoryRequestLocker() *MemoryRequestLocker {
	return &MemoryRequestLocker{
		locks: make(map[string]time.Time),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (l *MemoryRequestLocker) Acquire(_ context.Context, requestID string, ttl time.Duration) (LockHandle, error) {
	if l == nil {
		return nil, fmt.Errorf("core: request locker is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, fmt.Errorf("core: request id is required for lock acquisition")
	}
	if ttl <= 0 {
		ttl = defaultProvisionLeaseTTL
	}

	now := l.nowFn()
	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.locks[requestID]; ok && now.Before(until) {
		return nil, fmt.Errorf("%w: provisioning lease already held for request %q", ErrRequestLeaseHeld, requestID)
	}
	l.locks[requestID] = now.Add(ttl)
	return &memoryLockHandle{locker: l, requestID: requestID}, nil
}

type memoryLockHandle struct {
	locker    *MemoryRequestLocker
	requestID string
	once      sync.Once
}

func (h *memoryLockHandle) Unlock(_ context.Context) error {
	if h == nil || h.locker == nil {
		return nil
	}
	h.once.Do(func() {
		h.locker.mu.Lock()
		delete(h.locker.locks, h.requestID)
		h.locker.mu.Unlock()
	})
	return nil
}
