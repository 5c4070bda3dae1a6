package kv

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStore_IncrIsAtomic(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Incr(ctx, "calls"); err != nil {
				t.Errorf("incr: %v", err)
			}
		}()
	}
	wg.Wait()

	value, ok, err := store.Get(ctx, "calls")
	if err != nil || !ok {
		t.Fatalf("expected counter to exist, ok=%v err=%v", ok, err)
	}
	if value != "50" {
		t.Fatalf("expected 50 increments, got %s", value)
	}
}

func TestMemoryStore_IncrRejectsNonInteger(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "calls", "abc")

	if _, err := store.Incr(ctx, "calls"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}
}

func TestMemoryStore_RolloverResetsOncePerDay(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "date", "2025-01-01")
	_ = store.Set(ctx, "calls", "42")

	reset, err := store.Rollover(ctx, "date", "2025-01-02", "calls")
	if err != nil || !reset {
		t.Fatalf("expected reset, got reset=%v err=%v", reset, err)
	}
	if value, _, _ := store.Get(ctx, "calls"); value != "0" {
		t.Fatalf("expected counter reset to 0, got %s", value)
	}

	_, _ = store.Incr(ctx, "calls")
	reset, err = store.Rollover(ctx, "date", "2025-01-02", "calls")
	if err != nil || reset {
		t.Fatalf("expected no second reset, got reset=%v err=%v", reset, err)
	}
	if value, _, _ := store.Get(ctx, "calls"); value != "1" {
		t.Fatalf("expected counter to keep 1, got %s", value)
	}
}

func TestMemoryStore_CompareAndSwap(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	swapped, _ := store.CompareAndSwap(ctx, "flag", "", "backup")
	if !swapped {
		t.Fatalf("expected swap on missing key")
	}
	swapped, _ = store.CompareAndSwap(ctx, "flag", "", "backup")
	if swapped {
		t.Fatalf("expected second swap from empty to fail")
	}
	swapped, _ = store.CompareAndSwap(ctx, "flag", "backup", "primary")
	if !swapped {
		t.Fatalf("expected swap from backup to primary")
	}
	if value, _, _ := store.Get(ctx, "flag"); value != "primary" {
		t.Fatalf("expected primary, got %s", value)
	}
}
