package contextstore

import (
	"context"
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
)

func TestGetCreatesWhenMissing(t *testing.T) {
	s := New(Config{})
	if _, ok := s.Get("u1", "s1", false); ok {
		t.Fatal("expected no context before creation")
	}
	ctx, ok := s.Get("u1", "s1", true)
	if !ok || ctx.UserID != "u1" || ctx.SessionID != "s1" {
		t.Fatalf("expected created context, got %+v ok=%v", ctx, ok)
	}
}

func TestAppendInteractionTrimsHistory(t *testing.T) {
	s := New(Config{})
	for i := 0; i < model.MaxHistory+5; i++ {
		s.AppendInteraction("u1", "s1", "hi", "hello", model.CategoryGeneralConversation, nil)
	}
	ctx, ok := s.Get("u1", "s1", false)
	if !ok {
		t.Fatal("expected context to exist")
	}
	if len(ctx.History) != model.MaxHistory {
		t.Fatalf("history length = %d, want %d", len(ctx.History), model.MaxHistory)
	}
}

func TestAppendInteractionExtractsTopicForDocumentGeneration(t *testing.T) {
	s := New(Config{})
	ctx := s.AppendInteraction("u1", "s1", "create a report about quarterly earnings", "ok", model.CategoryDocumentGeneration, nil)
	if ctx.CurrentTopic != "quarterly earnings" {
		t.Fatalf("current topic = %q, want %q", ctx.CurrentTopic, "quarterly earnings")
	}
}

func TestExpiredContextIsClearedOnGet(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	s := New(Config{Now: func() time.Time { return clock }})
	s.AppendInteraction("u1", "s1", "hi", "hello", model.CategoryGeneralConversation, nil)
	clock = clock.Add(model.IdleExpiry + time.Minute)
	if _, ok := s.Get("u1", "s1", false); ok {
		t.Fatal("expected context to be expired and cleared")
	}
}

func TestClearRemovesContext(t *testing.T) {
	s := New(Config{})
	s.AppendInteraction("u1", "s1", "hi", "hello", model.CategoryGeneralConversation, nil)
	s.Clear("u1", "s1")
	if _, ok := s.Get("u1", "s1", false); ok {
		t.Fatal("expected context to be cleared")
	}
}

func TestClearUserRemovesAllSessions(t *testing.T) {
	s := New(Config{})
	s.AppendInteraction("u1", "s1", "hi", "hello", model.CategoryGeneralConversation, nil)
	s.AppendInteraction("u1", "s2", "hi", "hello", model.CategoryGeneralConversation, nil)
	s.ClearUser("u1")
	if _, ok := s.Get("u1", "s1", false); ok {
		t.Fatal("expected s1 cleared")
	}
	if _, ok := s.Get("u1", "s2", false); ok {
		t.Fatal("expected s2 cleared")
	}
}

func TestEvictionDropsOldestOnOverflow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	s := New(Config{MaxContexts: 10, Now: func() time.Time { return clock }})
	for i := 0; i < 12; i++ {
		s.AppendInteraction("u1", string(rune('a'+i)), "hi", "hello", model.CategoryGeneralConversation, nil)
		clock = clock.Add(time.Second)
	}
	s.mapMu.RLock()
	count := len(s.contexts)
	s.mapMu.RUnlock()
	if count > 10 {
		t.Fatalf("context count = %d, want <= 10 after eviction", count)
	}
	if _, ok := s.Get("u1", "a", false); ok {
		t.Fatal("expected oldest session 'a' to be evicted")
	}
}

func TestSummaryReflectsHistory(t *testing.T) {
	s := New(Config{})
	s.AppendInteraction("u1", "s1", "create a report about X", "ok", model.CategoryDocumentGeneration, nil)
	s.AppendInteraction("u1", "s1", "send an email", "ok", model.CategoryEmail, nil)
	sum, ok := s.Summary("u1", "s1")
	if !ok {
		t.Fatal("expected summary to exist")
	}
	if sum.TotalInteractions != 2 {
		t.Fatalf("total interactions = %d, want 2", sum.TotalInteractions)
	}
	if len(sum.CategoriesUsed) != 2 {
		t.Fatalf("categories used = %v, want 2 distinct categories", sum.CategoriesUsed)
	}
}

func TestSuggestionsSeedWhenEmpty(t *testing.T) {
	s := New(Config{})
	sugg := s.Suggestions("u1", "s1")
	if len(sugg) == 0 {
		t.Fatal("expected seed suggestions for a fresh context")
	}
}

func TestMirrorsToSharedKV(t *testing.T) {
	kv := sharedkv.NewMemoryStore()
	s := New(Config{Shared: kv})
	s.AppendInteraction("u1", "s1", "hi", "hello", model.CategoryGeneralConversation, nil)
	if _, ok, _ := kv.Get(context.Background(), "context:u1:s1"); !ok {
		t.Fatal("expected context to be mirrored into the shared KV")
	}
}

func TestCloneContextIsIndependent(t *testing.T) {
	s := New(Config{})
	ctx, _ := s.Get("u1", "s1", true)
	ctx.CurrentTopic = "mutated"
	fresh, _ := s.Get("u1", "s1", false)
	if fresh.CurrentTopic == "mutated" {
		t.Fatal("expected returned context to be an independent clone")
	}
}
