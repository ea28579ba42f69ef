package analytics

import (
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

func TestNewProfileIsEmpty(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newProfile("u1", now)
	if p.TotalCommands != 0 || p.SuccessRate() != 0 || p.AverageCommandLength() != 0 {
		t.Fatalf("expected zero-value profile, got %+v", p)
	}
	if p.BehaviorPattern != "" {
		t.Fatalf("expected no behavior pattern before first event")
	}
}

func TestApplyCommandEventUpdatesFrequencyAndLength(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newProfile("u1", now)
	p.apply(model.AnalyticsEvent{
		Type:      model.EventCommand,
		UserID:    "u1",
		Category:  model.CategoryEmail,
		Timestamp: now.Add(time.Minute),
		Payload:   map[string]any{"command_text": "send an email to bob", "success": true},
	})
	if p.TotalCommands != 1 {
		t.Fatalf("TotalCommands = %d, want 1", p.TotalCommands)
	}
	if p.CommandFrequency[model.CategoryEmail] != 1 {
		t.Fatalf("expected 1 email command recorded")
	}
	if p.SuccessRate() != 1 {
		t.Fatalf("SuccessRate = %v, want 1", p.SuccessRate())
	}
	if p.AverageCommandLength() != float64(len("send an email to bob")) {
		t.Fatalf("AverageCommandLength = %v, want %v", p.AverageCommandLength(), len("send an email to bob"))
	}
	if !p.LastActive.Equal(now.Add(time.Minute)) {
		t.Fatalf("LastActive not advanced")
	}
}

func TestInferBehaviorNewForFewCommands(t *testing.T) {
	p := newProfile("u1", time.Now())
	p.TotalCommands = 2
	if inferBehavior(p) != BehaviorNew {
		t.Fatalf("expected new behavior for 2 commands")
	}
}

func TestInferBehaviorTaskFocusedForSingleCategory(t *testing.T) {
	p := newProfile("u1", time.Now())
	p.TotalCommands = 10
	p.CommandFrequency[model.CategoryEmail] = 10
	if inferBehavior(p) != BehaviorTaskFocused {
		t.Fatalf("expected task-focused behavior")
	}
}

func TestInferBehaviorConversationalWhenHalfGeneralConversation(t *testing.T) {
	p := newProfile("u1", time.Now())
	p.TotalCommands = 10
	p.CommandFrequency[model.CategoryGeneralConversation] = 6
	p.CommandFrequency[model.CategoryEmail] = 4
	if inferBehavior(p) != BehaviorConversational {
		t.Fatalf("expected conversational behavior, got %v", inferBehavior(p))
	}
}

func TestInferBehaviorExploratoryForManyDistinctCategories(t *testing.T) {
	p := newProfile("u1", time.Now())
	p.TotalCommands = 12
	p.CommandFrequency[model.CategoryEmail] = 3
	p.CommandFrequency[model.CategoryCalendar] = 3
	p.CommandFrequency[model.CategoryWebSearch] = 3
	p.CommandFrequency[model.CategoryDocumentGeneration] = 3
	if inferBehavior(p) != BehaviorExploratory {
		t.Fatalf("expected exploratory behavior, got %v", inferBehavior(p))
	}
}

func TestInferEngagementTiers(t *testing.T) {
	low := &Profile{TotalCommands: 5}
	medium := &Profile{TotalCommands: 25}
	high := &Profile{TotalCommands: 150}
	if inferEngagement(low) != EngagementLow {
		t.Fatalf("expected low engagement")
	}
	if inferEngagement(medium) != EngagementMedium {
		t.Fatalf("expected medium engagement")
	}
	if inferEngagement(high) != EngagementHigh {
		t.Fatalf("expected high engagement")
	}
}
