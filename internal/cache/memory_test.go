package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	store.Set(ctx, "names:m:v1:ana:5", []byte(`{"name":"Ana","candidates":["Ana","Anna"]}`), time.Minute)

	value, ok := store.Get(ctx, "names:m:v1:ana:5")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if string(value) != `{"name":"Ana","candidates":["Ana","Anna"]}` {
		t.Fatalf("unexpected cached value %q", value)
	}
}

func TestMemoryMissOnUnknownKey(t *testing.T) {
	t.Parallel()

	if _, ok := NewMemory().Get(context.Background(), "names:m:v1:nadie:1"); ok {
		t.Fatal("expected a miss for an unknown key")
	}
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	current := time.Now()
	store.now = func() time.Time { return current }

	store.Set(ctx, "k", []byte("v"), 10*time.Second)

	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatal("expected a hit before expiry")
	}

	current = current.Add(11 * time.Second)

	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expected a miss after expiry")
	}

	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be collected, %d left", store.Len())
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	original := []byte("abc")
	store.Set(ctx, "k", original, time.Minute)
	original[0] = 'x'

	value, ok := store.Get(ctx, "k")
	if !ok {
		t.Fatal("expected a hit")
	}
	if string(value) != "abc" {
		t.Fatalf("expected stored copy to be unaffected, got %q", value)
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var store Cache = Noop{}

	store.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expected noop cache to always miss")
	}
}

func TestNewWithoutURLSelectsNoop(t *testing.T) {
	t.Parallel()

	if _, ok := New("", nil).(Noop); !ok {
		t.Fatal("expected Noop when no backend URL is configured")
	}
}

func TestNewWithBadURLSelectsNoop(t *testing.T) {
	t.Parallel()

	if _, ok := New("::not-a-url::", nil).(Noop); !ok {
		t.Fatal("expected Noop when the backend URL cannot be parsed")
	}
}
