package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	s := store.Scope("u1")

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil || got != "1" {
		t.Fatalf("Get(a) = %q, %v; want \"1\", nil", got, err)
	}
	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
	if store.Used("u1") != 0 {
		t.Fatalf("Used() = %d after remove, want 0", store.Used("u1"))
	}
}

func TestMemoryStore_QuotaRejectsAndKeepsOldValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)
	s := store.Scope("u1")

	if err := s.Set(ctx, "k", "12345"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	err := s.Set(ctx, "k", "1234567890")
	if !IsQuotaExceeded(err) {
		t.Fatalf("Set() over quota error = %v, want ErrQuotaExceeded", err)
	}
	got, _ := s.Get(ctx, "k")
	if got != "12345" {
		t.Fatalf("value after rejected write = %q, want %q", got, "12345")
	}

	// overwriting counts against the old size, not in addition to it
	if err := s.Set(ctx, "k", "123456789"); err != nil {
		t.Fatalf("Set() replacing value within quota error = %v", err)
	}
	if store.Used("u1") != 10 {
		t.Fatalf("Used() = %d, want 10", store.Used("u1"))
	}
}

func TestMemoryStore_QuotaIsPerOwner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)
	alice, bob := store.Scope("alice"), store.Scope("bob")

	if err := bob.Set(ctx, "k", "123456789"); err != nil {
		t.Fatalf("bob Set() error = %v", err)
	}
	if err := alice.Set(ctx, "k", "abcdefghi"); err != nil {
		t.Fatalf("alice Set() error = %v, bob's usage must not count", err)
	}
	if got, _ := bob.Get(ctx, "k"); got != "123456789" {
		t.Fatalf("bob value = %q, owners must not share keys", got)
	}
	if err := alice.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := bob.Get(ctx, "k"); err != nil {
		t.Fatalf("bob Get() after alice Remove() error = %v", err)
	}

	shared := store.Scope(SharedOwner)
	if err := shared.Set(ctx, "accounts", "longer than the quota"); err != nil {
		t.Fatalf("shared Set() error = %v, shared space is unmetered", err)
	}
}

func TestMemoryStore_SetQuota(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	s := store.Scope("u1")
	_ = s.Set(ctx, "a", "12345")

	store.SetQuota(store.Used("u1") + 2)
	if err := s.Set(ctx, "b", "1234"); !IsQuotaExceeded(err) {
		t.Fatalf("Set() after lowering quota error = %v, want ErrQuotaExceeded", err)
	}
	if err := s.Set(ctx, "b", ""); err != nil {
		t.Fatalf("Set() within new quota error = %v", err)
	}
}
