package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

func TestScheduleAndList(t *testing.T) {
	tool := New(nil, nil)
	when := time.Now().Add(24 * time.Hour).Format(time.RFC3339)

	out, err := tool.Dispatch(context.Background(), "schedule", map[string]any{
		"title": "Standup", "when": when, "attendees": []any{"a@b.com", "c@d.com"},
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	event := out.(Event)
	if event.Title != "Standup" || len(event.Attendees) != 2 {
		t.Fatalf("unexpected event: %+v", event)
	}

	listed, err := tool.Dispatch(context.Background(), "list", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	events := listed.([]Event)
	if len(events) != 1 || events[0].ID != event.ID {
		t.Fatalf("expected the scheduled event to be listed, got %+v", events)
	}
}

func TestScheduleRequiresValidWhen(t *testing.T) {
	tool := New(nil, nil)
	_, err := tool.Dispatch(context.Background(), "schedule", map[string]any{"title": "x", "when": "not-a-time"})
	derr, ok := model.AsError(err)
	if !ok || derr.Kind != model.KindInvalidInput {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestCancelRemovesEvent(t *testing.T) {
	tool := New(nil, nil)
	when := time.Now().Format(time.RFC3339)
	out, _ := tool.Dispatch(context.Background(), "schedule", map[string]any{"title": "1:1", "when": when})
	event := out.(Event)

	if _, err := tool.Dispatch(context.Background(), "cancel", map[string]any{"id": event.ID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := tool.Dispatch(context.Background(), "cancel", map[string]any{"id": event.ID}); err == nil {
		t.Fatal("expected not_found on double cancel")
	}
}

func TestStopClearsEvents(t *testing.T) {
	tool := New(nil, nil)
	when := time.Now().Format(time.RFC3339)
	tool.Dispatch(context.Background(), "schedule", map[string]any{"title": "x", "when": when})
	if err := tool.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	listed, _ := tool.Dispatch(context.Background(), "list", nil)
	if len(listed.([]Event)) != 0 {
		t.Fatal("expected events to be cleared on stop")
	}
}
