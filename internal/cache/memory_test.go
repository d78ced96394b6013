package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache(10, time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Fatalf("expected 'value1', got '%s'", string(val))
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache(10, time.Minute)
	defer func() { _ = c.Close() }()

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestMemoryCache_CapacityBound(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache(3, time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("key%d", i)
		if err := c.Set(ctx, key, []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if c.Len() > 3 {
		t.Fatalf("expected at most 3 live entries, got %d", c.Len())
	}

	// Oldest entries were evicted, newest survive.
	if _, err := c.Get(ctx, "key0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected key0 evicted, got: %v", err)
	}
	if _, err := c.Get(ctx, "key9"); err != nil {
		t.Fatalf("expected key9 present, got: %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache(10, 20*time.Millisecond)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "ephemeral", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := c.Get(ctx, "ephemeral"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected entry to expire, got: %v", err)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache(10, time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	original := []byte("value")
	if err := c.Set(ctx, "key", original, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	original[0] = 'X'

	val, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value" {
		t.Fatalf("cached value was mutated through the caller's slice: %q", val)
	}

	val[0] = 'Y'
	again, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(again) != "value" {
		t.Fatalf("cached value was mutated through a returned slice: %q", again)
	}
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache(10, time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	keys := []string{
		"cards:user-a:card:aaaa1111",
		"cards:user-a:overdue:bbbb2222",
		"cards:user-b:card:cccc3333",
	}
	for _, k := range keys {
		if err := c.Set(ctx, k, []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	removed, err := c.DeletePattern(ctx, "cards:user-a:")
	if err != nil {
		t.Fatalf("DeletePattern failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed entries, got %d", removed)
	}

	if _, err := c.Get(ctx, "cards:user-a:card:aaaa1111"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected user-a entry removed, got: %v", err)
	}
	if _, err := c.Get(ctx, "cards:user-b:card:cccc3333"); err != nil {
		t.Fatalf("expected user-b entry untouched, got: %v", err)
	}
}
