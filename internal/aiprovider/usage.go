package aiprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
)

// usageTTL retains a day's usage counters for 30 days.
const usageTTL = 30 * 24 * time.Hour

// UsageTracker appends per-provider, per-model, per-day input/output
// token counters to the shared KV.
type UsageTracker struct {
	shared sharedkv.Store
	now    func() time.Time
}

// NewUsageTracker builds a tracker. shared may be nil, in which case
// Record is a no-op: usage accounting degrades gracefully rather than
// blocking the caller.
func NewUsageTracker(shared sharedkv.Store, now func() time.Time) *UsageTracker {
	if now == nil {
		now = time.Now
	}
	return &UsageTracker{shared: shared, now: now}
}

// Record increments today's input/output token counters for vendor/model.
func (t *UsageTracker) Record(ctx context.Context, vendor Vendor, model string, resp CompletionResponse) {
	if t.shared == nil {
		return
	}
	day := t.now().UTC().Format("2006-01-02")
	inputKey := fmt.Sprintf("usage:%s:%s:%s:input", vendor, model, day)
	outputKey := fmt.Sprintf("usage:%s:%s:%s:output", vendor, model, day)
	_, _ = t.shared.Incr(ctx, inputKey, int64(resp.InputTokens), usageTTL)
	_, _ = t.shared.Incr(ctx, outputKey, int64(resp.OutputTokens), usageTTL)
}

// DailyUsage is the input/output split for one vendor/model/day.
type DailyUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Get reads today's counters for vendor/model. Returns the zero value if
// the shared KV is unavailable or nothing has been recorded yet.
func (t *UsageTracker) Get(ctx context.Context, vendor Vendor, model string, day string) DailyUsage {
	if t.shared == nil {
		return DailyUsage{}
	}
	inputKey := fmt.Sprintf("usage:%s:%s:%s:input", vendor, model, day)
	outputKey := fmt.Sprintf("usage:%s:%s:%s:output", vendor, model, day)
	var usage DailyUsage
	if raw, ok, err := t.shared.Get(ctx, inputKey); err == nil && ok {
		usage.InputTokens = parseCounter(raw)
	}
	if raw, ok, err := t.shared.Get(ctx, outputKey); err == nil && ok {
		usage.OutputTokens = parseCounter(raw)
	}
	return usage
}

func parseCounter(raw []byte) int64 {
	var v int64
	_, _ = fmt.Sscanf(string(raw), "%d", &v)
	return v
}
