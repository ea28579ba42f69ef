package aiprovider

import (
	"context"
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
)

func TestUsageTrackerRecordsAndAccumulates(t *testing.T) {
	kv := sharedkv.NewMemoryStore()
	fixedDay := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewUsageTracker(kv, func() time.Time { return fixedDay })

	tracker.Record(context.Background(), VendorAnthropic, "claude-sonnet", CompletionResponse{InputTokens: 100, OutputTokens: 50})
	tracker.Record(context.Background(), VendorAnthropic, "claude-sonnet", CompletionResponse{InputTokens: 20, OutputTokens: 10})

	usage := tracker.Get(context.Background(), VendorAnthropic, "claude-sonnet", "2026-03-01")
	if usage.InputTokens != 120 {
		t.Fatalf("input tokens = %d, want 120", usage.InputTokens)
	}
	if usage.OutputTokens != 60 {
		t.Fatalf("output tokens = %d, want 60", usage.OutputTokens)
	}
}

func TestUsageTrackerNilStoreIsNoOp(t *testing.T) {
	tracker := NewUsageTracker(nil, nil)
	tracker.Record(context.Background(), VendorOpenAI, "gpt-4o", CompletionResponse{InputTokens: 5})
	usage := tracker.Get(context.Background(), VendorOpenAI, "gpt-4o", "2026-03-01")
	if usage.InputTokens != 0 {
		t.Fatalf("expected zero usage with nil store, got %+v", usage)
	}
}
