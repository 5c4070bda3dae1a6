package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// openTestStore needs a disposable Redis; set REDIS_TEST_URL to run.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	prefix := fmt.Sprintf("tactical-intel-test:%d:", time.Now().UnixNano())
	store, err := Open(context.Background(), url, prefix, 2*time.Second)
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_IncrAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		got, err := store.Incr(ctx, "calls")
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != int64(i) {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}

	value, ok, err := store.Get(ctx, "calls")
	if err != nil || !ok || value != "3" {
		t.Fatalf("unexpected get: value=%q ok=%v err=%v", value, ok, err)
	}

	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatalf("expected missing key")
	}
}

func TestStore_Rollover(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "date", "2025-01-01")
	_ = store.Set(ctx, "calls", "9")

	reset, err := store.Rollover(ctx, "date", "2025-01-02", "calls")
	if err != nil || !reset {
		t.Fatalf("expected reset, got reset=%v err=%v", reset, err)
	}
	if value, _, _ := store.Get(ctx, "calls"); value != "0" {
		t.Fatalf("expected zeroed counter, got %s", value)
	}

	reset, err = store.Rollover(ctx, "date", "2025-01-02", "calls")
	if err != nil || reset {
		t.Fatalf("expected no reset on same day, got reset=%v err=%v", reset, err)
	}
}

func TestStore_CompareAndSwap(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	swapped, err := store.CompareAndSwap(ctx, "flag", "", "backup")
	if err != nil || !swapped {
		t.Fatalf("expected swap on missing key, got swapped=%v err=%v", swapped, err)
	}
	swapped, _ = store.CompareAndSwap(ctx, "flag", "primary", "backup")
	if swapped {
		t.Fatalf("expected mismatch to refuse swap")
	}
}
