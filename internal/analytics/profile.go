// Package analytics implements the analytics sink: a bounded append-only
// event buffer drained in batches into per-user behavior profiles, with
// a background cleaner that retires profiles gone idle. Modeled on the
// teacher's internal/web analytics aggregation (internal/web/analytics.go)
// and persisted the way internal/memory/backend/sqlitevec persists its
// own state, via a pure-Go modernc.org/sqlite store.
package analytics

import (
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// EngagementTier buckets a profile by how much it has used the system.
type EngagementTier string

const (
	EngagementLow    EngagementTier = "low"
	EngagementMedium EngagementTier = "medium"
	EngagementHigh   EngagementTier = "high"
)

// BehaviorPattern is a coarse label for a user's dominant usage shape.
type BehaviorPattern string

const (
	BehaviorNew           BehaviorPattern = "new"
	BehaviorTaskFocused   BehaviorPattern = "task-focused"
	BehaviorExploratory   BehaviorPattern = "exploratory"
	BehaviorConversational BehaviorPattern = "conversational"
)

// DefaultRetention is how long a profile survives without activity
// before the background cleaner drops it.
const DefaultRetention = 30 * 24 * time.Hour

// Profile is the per-user behavior aggregate the batch drainer maintains.
type Profile struct {
	UserID            string
	CommandFrequency  map[model.Category]int
	TotalCommands     int
	SuccessfulCommands int
	TotalCommandChars int
	BehaviorPattern   BehaviorPattern
	EngagementTier    EngagementTier
	FirstSeen         time.Time
	LastActive        time.Time
}

func newProfile(userID string, now time.Time) *Profile {
	return &Profile{
		UserID:           userID,
		CommandFrequency: map[model.Category]int{},
		FirstSeen:        now,
		LastActive:       now,
	}
}

// SuccessRate is SuccessfulCommands / TotalCommands, or 0 with no commands.
func (p *Profile) SuccessRate() float64 {
	if p.TotalCommands == 0 {
		return 0
	}
	return float64(p.SuccessfulCommands) / float64(p.TotalCommands)
}

// AverageCommandLength is TotalCommandChars / TotalCommands, or 0 with no commands.
func (p *Profile) AverageCommandLength() float64 {
	if p.TotalCommands == 0 {
		return 0
	}
	return float64(p.TotalCommandChars) / float64(p.TotalCommands)
}

// apply folds one analytics event into the profile, then recomputes the
// derived behavior pattern and engagement tier.
func (p *Profile) apply(event model.AnalyticsEvent) {
	if event.Timestamp.After(p.LastActive) {
		p.LastActive = event.Timestamp
	}
	switch event.Type {
	case model.EventCommand:
		p.TotalCommands++
		p.CommandFrequency[event.Category]++
		if text, ok := event.Payload["command_text"].(string); ok {
			p.TotalCommandChars += len(text)
		}
		if success, ok := event.Payload["success"].(bool); ok && success {
			p.SuccessfulCommands++
		}
	case model.EventWorkflowEnd:
		if success, ok := event.Payload["success"].(bool); ok && success {
			p.SuccessfulCommands++
		}
	case model.EventError:
		// counted against success rate implicitly: TotalCommands already
		// incremented by the EventCommand that preceded the failure.
	}
	p.recompute()
}

func (p *Profile) recompute() {
	p.BehaviorPattern = inferBehavior(p)
	p.EngagementTier = inferEngagement(p)
}

func inferEngagement(p *Profile) EngagementTier {
	switch {
	case p.TotalCommands >= 100:
		return EngagementHigh
	case p.TotalCommands >= 20:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

func inferBehavior(p *Profile) BehaviorPattern {
	if p.TotalCommands < 3 {
		return BehaviorNew
	}
	distinct := len(p.CommandFrequency)
	if distinct <= 1 {
		return BehaviorTaskFocused
	}
	conversational := p.CommandFrequency[model.CategoryGeneralConversation]
	if conversational*2 >= p.TotalCommands {
		return BehaviorConversational
	}
	if distinct >= 4 {
		return BehaviorExploratory
	}
	return BehaviorTaskFocused
}
