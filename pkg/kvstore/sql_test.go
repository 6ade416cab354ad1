package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "kv.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	return db
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLStore(openSQLite(t), 0)
	if err != nil {
		t.Fatalf("NewSQLStore() error = %v", err)
	}
	s := store.Scope("u1")

	if _, err := s.Get(ctx, "sessions:u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "sessions:u1", `[]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "sessions:u1", `[{"id":"s1"}]`); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, err := s.Get(ctx, "sessions:u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != `[{"id":"s1"}]` {
		t.Fatalf("Get() = %s", got)
	}
	if err := s.Remove(ctx, "sessions:u1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := s.Get(ctx, "sessions:u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after remove error = %v, want ErrNotFound", err)
	}
}

func TestSQLStore_Quota(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLStore(openSQLite(t), 20)
	if err != nil {
		t.Fatalf("NewSQLStore() error = %v", err)
	}
	s := store.Scope("u1")
	if err := s.Set(ctx, "a", "0123456789"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "b", "0123456789"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Set() over quota error = %v, want ErrQuotaExceeded", err)
	}
	if err := s.Set(ctx, "a", "012345678901234567"); err != nil {
		t.Fatalf("Set() replacing within quota error = %v", err)
	}
}

func TestSQLStore_QuotaIsPerOwner(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLStore(openSQLite(t), 20)
	if err != nil {
		t.Fatalf("NewSQLStore() error = %v", err)
	}
	alice, bob := store.Scope("alice"), store.Scope("bob")

	if err := bob.Set(ctx, "k", "0123456789012345"); err != nil {
		t.Fatalf("bob Set() error = %v", err)
	}
	if err := alice.Set(ctx, "k", "abcdefghijklmnop"); err != nil {
		t.Fatalf("alice Set() error = %v, bob's usage must not count", err)
	}
	if got, _ := bob.Get(ctx, "k"); got != "0123456789012345" {
		t.Fatalf("bob value = %q, owners must not share keys", got)
	}
	if err := store.Scope(SharedOwner).Set(ctx, "accounts", "longer than the twenty byte quota"); err != nil {
		t.Fatalf("shared Set() error = %v, shared space is unmetered", err)
	}
}
