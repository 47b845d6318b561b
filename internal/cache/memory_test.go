package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != "v" {
		t.Errorf("expected v, got %s", got)
	}
}

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, len=%d", c.Len())
	}
}

func TestMemory_SlidingWindowIsCapped(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)

	// Each hit 50s apart keeps the entry alive until the extension budget is spent.
	for i := 0; i < maxExtensions-1; i++ {
		now = now.Add(50 * time.Second)
		if _, ok := c.Get(ctx, "k"); !ok {
			t.Fatalf("hit %d: expected entry to still be alive", i)
		}
	}

	// Budget spent: the last extension holds for one TTL only.
	now = now.Add(50 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected entry alive within final window")
	}
	now = now.Add(61 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire after extensions were exhausted")
	}
}

func TestMemory_SetSweepsExpiredEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < sweepThreshold; i++ {
		c.Set(ctx, fmt.Sprintf("stale-%d", i), []byte("v"), time.Minute)
	}
	c.Set(ctx, "live", []byte("v"), time.Hour)
	if c.Len() != sweepThreshold+1 {
		t.Fatalf("expected %d entries before expiry, got %d", sweepThreshold+1, c.Len())
	}

	now = now.Add(2 * time.Minute)
	c.Set(ctx, "fresh", []byte("v"), time.Minute)

	if c.Len() != 2 {
		t.Errorf("expected only live and fresh to remain, got %d entries", c.Len())
	}
	if _, ok := c.Get(ctx, "live"); !ok {
		t.Error("expected unexpired entry to survive the sweep")
	}
}
