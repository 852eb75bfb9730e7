package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestNewLock(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)

	if lock == nil {
		t.Fatal("expected non-nil lock")
	}
	if lock.ownerID == "" {
		t.Error("expected non-empty owner ID")
	}
}

func TestLock_OwnerID_Unique(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	if lock1.OwnerID() == lock2.OwnerID() {
		t.Errorf("expected unique owner IDs, got same: %s", lock1.OwnerID())
	}
}

func TestLock_Acquire_Success(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "token-refresh:u1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire lock")
	}
}

func TestLock_Acquire_AlreadyHeld(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "token-refresh:u1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected first lock to acquire")
	}

	// Second instance competing for the same user's refresh loses.
	acquired, err = lock2.Acquire(ctx, "token-refresh:u1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected second lock to fail")
	}
}

func TestLock_Acquire_DistinctUsersIndependent(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	for _, name := range []string{"token-refresh:u1", "token-refresh:u2"} {
		acquired, err := lock.Acquire(ctx, name, 10*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !acquired {
			t.Errorf("expected %s to be acquirable", name)
		}
	}
}

func TestLock_Release(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if _, err := lock1.Acquire(ctx, "token-refresh:u1", 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lock1.Release(ctx, "token-refresh:u1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// Lock is free again after release.
	acquired, err := lock2.Acquire(ctx, "token-refresh:u1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected lock to be acquirable after release")
	}
}

func TestLock_Release_NotOwner(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if _, err := lock1.Acquire(ctx, "token-refresh:u1", 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Non-owner release is a no-op, not an error.
	if err := lock2.Release(ctx, "token-refresh:u1"); err != nil {
		t.Fatalf("non-owner release errored: %v", err)
	}

	// Owner still holds the lock.
	acquired, err := lock2.Acquire(ctx, "token-refresh:u1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected lock to still be held by the owner")
	}
}

func TestLock_Release_NotHeld(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)

	if err := lock.Release(context.Background(), "never-acquired"); err != nil {
		t.Errorf("releasing an unheld lock should not error, got %v", err)
	}
}

func TestLock_TTLExpiry(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if _, err := lock1.Acquire(ctx, "token-refresh:u1", time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A crashed holder's lock frees itself once the TTL passes.
	mr.FastForward(2 * time.Second)

	acquired, err := lock2.Acquire(ctx, "token-refresh:u1", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected lock to be acquirable after TTL expiry")
	}
}
