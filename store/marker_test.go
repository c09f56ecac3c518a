package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseMarkerStore(t *testing.T, m MarkerStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := m.Get(ctx, SessionMarkerKey); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound on empty store, got %v", err)
	}
	if err := m.Delete(ctx, SessionMarkerKey); err != nil {
		t.Fatalf("delete missing marker: %v", err)
	}
	if err := m.Set(ctx, SessionMarkerKey, "token-1"); err != nil {
		t.Fatalf("set marker: %v", err)
	}
	if err := m.Set(ctx, SessionMarkerKey, "token-2"); err != nil {
		t.Fatalf("overwrite marker: %v", err)
	}
	got, err := m.Get(ctx, SessionMarkerKey)
	if err != nil {
		t.Fatalf("get marker: %v", err)
	}
	if got != "token-2" {
		t.Fatalf("expected token-2, got %q", got)
	}
	if err := m.Delete(ctx, SessionMarkerKey); err != nil {
		t.Fatalf("delete marker: %v", err)
	}
	if _, err := m.Get(ctx, SessionMarkerKey); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound after delete, got %v", err)
	}
}

func TestFileMarkerStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseMarkerStore(t, NewFileMarkerStore(path))
}

func TestFileMarkerStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := NewFileMarkerStore(path).Set(context.Background(), SessionMarkerKey, "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := NewFileMarkerStore(path).Get(context.Background(), SessionMarkerKey)
	if err != nil || got != "abc" {
		t.Fatalf("expected abc after reopen, got %q err=%v", got, err)
	}
}

func TestRedisMarkerStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	exerciseMarkerStore(t, NewRedisMarkerStore(rc, "test:", time.Hour))
}

func TestRedisMarkerStoreExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	m := NewRedisMarkerStore(rc, "test:", time.Minute)
	if err := m.Set(context.Background(), SessionMarkerKey, "t"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("test:" + SessionMarkerKey) {
		t.Fatal("expected prefixed key in redis")
	}
	mr.FastForward(2 * time.Minute)
	if _, err := m.Get(context.Background(), SessionMarkerKey); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected marker expired, got %v", err)
	}
}
