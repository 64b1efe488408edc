package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRequestLocker_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryRequestLocker()

	handle, err := locker.Acquire(ctx, "req-1", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := locker.Acquire(ctx, "req-1", time.Minute); !errors.Is(err, ErrRequestLeaseHeld) {
		t.Fatalf("expected held lease conflict, got %v", err)
	}
	// Other request ids are unaffected.
	if _, err := locker.Acquire(ctx, "req-2", time.Minute); err != nil {
		t.Fatalf("acquire other id: %v", err)
	}

	if err := handle.Unlock(ctx); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := locker.Acquire(ctx, "req-1", time.Minute); err != nil {
		t.Fatalf("re-acquire after unlock: %v", err)
	}
}

func TestMemoryRequestLocker_ExpiredLeaseIsReacquirable(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryRequestLocker()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	locker.nowFn = func() time.Time { return current }

	if _, err := locker.Acquire(ctx, "req-1", time.Minute); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	current = current.Add(2 * time.Minute)
	if _, err := locker.Acquire(ctx, "req-1", time.Minute); err != nil {
		t.Fatalf("expected expired lease to be reacquirable: %v", err)
	}
}

func TestMemoryRequestLocker_UnlockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryRequestLocker()

	first, err := locker.Acquire(ctx, "req-1", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := first.Unlock(ctx); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	second, err := locker.Acquire(ctx, "req-1", time.Minute)
	if err != nil {
		t.Fatalf("re-acquire: %v", err)
	}
	// A stale double-unlock must not release the successor's lease.
	if err := first.Unlock(ctx); err != nil {
		t.Fatalf("stale unlock: %v", err)
	}
	if _, err := locker.Acquire(ctx, "req-1", time.Minute); !errors.Is(err, ErrRequestLeaseHeld) {
		t.Fatalf("expected successor lease still held, got %v", err)
	}
	if err := second.Unlock(ctx); err != nil {
		t.Fatalf("unlock successor: %v", err)
	}
}

func TestMemoryRequestLocker_RequiresRequestID(t *testing.T) {
	locker := NewMemoryRequestLocker()
	if _, err := locker.Acquire(context.Background(), "  ", time.Minute); err == nil {
		t.Fatal("expected empty request id rejection")
	}
}
