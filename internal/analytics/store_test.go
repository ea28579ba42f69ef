package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

func TestStoreUpsertAndGetRoundTrips(t *testing.T) {
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newProfile("u1", now)
	p.apply(model.AnalyticsEvent{Type: model.EventCommand, UserID: "u1", Category: model.CategoryEmail, Timestamp: now, Payload: map[string]any{"success": true}})

	ctx := context.Background()
	if err := store.Upsert(ctx, p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	loaded, ok, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected profile to be found")
	}
	if loaded.TotalCommands != 1 || loaded.CommandFrequency[model.CategoryEmail] != 1 {
		t.Fatalf("unexpected loaded profile: %+v", loaded)
	}
}

func TestStoreGetMissingReturnsFalse(t *testing.T) {
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected not found")
	}
}

func TestStoreDeleteInactiveBeforeRemovesOldProfiles(t *testing.T) {
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	old := newProfile("stale", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	fresh := newProfile("active", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	if err := store.Upsert(ctx, old); err != nil {
		t.Fatalf("Upsert old: %v", err)
	}
	if err := store.Upsert(ctx, fresh); err != nil {
		t.Fatalf("Upsert fresh: %v", err)
	}

	removed, err := store.DeleteInactiveBefore(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DeleteInactiveBefore: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok, _ := store.Get(ctx, "stale"); ok {
		t.Fatal("expected stale profile to be removed")
	}
	if _, ok, _ := store.Get(ctx, "active"); !ok {
		t.Fatal("expected active profile to remain")
	}
}
