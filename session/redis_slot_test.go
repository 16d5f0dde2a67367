package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestRedisSlot_RoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	slot := NewRedisSlot(client, "aks", "ctx-1")
	ctx := context.Background()

	if _, err := slot.Read(ctx); !errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty on fresh slot, got %v", err)
	}

	payload := []byte("snapshot-bytes")
	if err := slot.Write(ctx, payload, time.Minute); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := slot.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("Read = %q, want %q", got, payload)
	}

	if err := slot.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := slot.Read(ctx); !errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty after Delete, got %v", err)
	}
}

func TestRedisSlot_TTLExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	slot := NewRedisSlot(client, "aks", "ctx-1")
	ctx := context.Background()

	if err := slot.Write(ctx, []byte("x"), 30*time.Minute); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	mr.FastForward(31 * time.Minute)

	if _, err := slot.Read(ctx); !errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty after TTL, got %v", err)
	}
}

func TestRedisSlot_DeleteRemovesLegacyKeys(t *testing.T) {
	mr, client := newTestRedis(t)
	slot := NewRedisSlot(client, "aks", "ctx-1", WithLegacyKeys("session", "session_user"))
	ctx := context.Background()

	mr.Set("session", "old")
	mr.Set("session_user", "old")
	slot.Write(ctx, []byte("x"), time.Minute)

	if err := slot.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if mr.Exists("session") || mr.Exists("session_user") {
		t.Fatal("legacy keys survived Delete")
	}
}

func TestStore_OverRedisSlot(t *testing.T) {
	mr, client := newTestRedis(t)
	slot := NewRedisSlot(client, "aks", "ctx-1")
	store := NewStore(slot, Config{})
	ctx := context.Background()

	if err := store.Save(ctx, testUser()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap == nil || snap.User != testUser() {
		t.Fatalf("snapshot mismatch over redis: %+v", snap)
	}

	// Redis-side TTL enforces expiry even without a lazy read.
	mr.FastForward(31 * time.Minute)
	snap, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("Get after TTL failed: %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot after redis TTL")
	}
}

func TestRedisSlot_UnavailableBackend(t *testing.T) {
	mr, client := newTestRedis(t)
	slot := NewRedisSlot(client, "aks", "ctx-1")
	ctx := context.Background()

	mr.Close()

	if _, err := slot.Read(ctx); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
	if err := slot.Write(ctx, []byte("x"), time.Minute); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable on write, got %v", err)
	}
}
