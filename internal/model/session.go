package model

import "time"

// Session is a duplex connection.
type Session struct {
	ClientID     string
	Open         bool
	ConnectedAt  time.Time
	LastActivity time.Time
	MessageCount int
	Groups       map[string]bool
	Metadata     map[string]any
}

// NewSession creates an open session for clientID.
func NewSession(clientID string, now time.Time) *Session {
	return &Session{
		ClientID:     clientID,
		Open:         true,
		ConnectedAt:  now,
		LastActivity: now,
		Groups:       map[string]bool{},
		Metadata:     map[string]any{},
	}
}

// IdleFor reports how long the session has been idle at now.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}

// SessionIdleLimit is the janitor's eviction threshold.
const SessionIdleLimit = 300 * time.Second

// JanitorInterval is how often the janitor sweeps for idle sessions.
const JanitorInterval = 60 * time.Second

// AnalyticsEventType enumerates the append-only event kinds.
type AnalyticsEventType string

const (
	EventCommand              AnalyticsEventType = "command"
	EventWorkflowStart        AnalyticsEventType = "workflow-start"
	EventWorkflowEnd          AnalyticsEventType = "workflow-end"
	EventParameterResolution  AnalyticsEventType = "parameter-resolution"
	EventContextSwitch        AnalyticsEventType = "context-switch"
	EventError                AnalyticsEventType = "error"
	EventFeedback             AnalyticsEventType = "feedback"
	EventSessionStart         AnalyticsEventType = "session-start"
	EventSessionEnd           AnalyticsEventType = "session-end"
)

// AnalyticsEvent is an immutable, append-only analytics record.
type AnalyticsEvent struct {
	Type      AnalyticsEventType
	UserID    string
	SessionID string
	Category  Category
	Timestamp time.Time
	Payload   map[string]any
}
