package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	store := NewStore(Config{Addr: mr.Addr(), TTL: time.Hour})
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestPutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	marker := Marker{Email: "admin@example.com", Role: "admin"}

	if err := store.Put(ctx, "usr_1", marker); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "usr_1")

	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != marker {
		t.Errorf("got %+v, want %+v", got, marker)
	}

	if err := store.Delete(ctx, "usr_1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err = store.Get(ctx, "usr_1")

	if !errors.Is(err, ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker after delete, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nobody")

	if !errors.Is(err, ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker, got %v", err)
	}
}

func TestCorruptMarkerTreatedAsAbsent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mr.Set("adminsession:usr_1", "{not json")

	_, err := store.Get(ctx, "usr_1")

	if !errors.Is(err, ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker for corrupt marker, got %v", err)
	}

	// corrupt value is cleared so the next read is a clean miss
	if mr.Exists("adminsession:usr_1") {
		t.Error("corrupt marker should be deleted")
	}
}

func TestMarkerExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "usr_1", Marker{Email: "a@example.com", Role: "admin"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "usr_1")

	if !errors.Is(err, ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker after expiry, got %v", err)
	}
}
