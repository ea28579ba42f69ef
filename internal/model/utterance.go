package model

import "time"

// Utterance is the immutable input to classification.
type Utterance struct {
	Text        string
	UserID      string
	SessionID   string
	UseContext  bool
	Parameters  map[string]any
	ReceivedAt  time.Time
}

// Validate enforces the 1-1000 character bound. It never mutates u.
func (u Utterance) Validate() error {
	n := len(u.Text)
	if n < 1 || n > 1000 {
		return NewError(KindInvalidInput, "utterance", "text must be 1-1000 characters", nil)
	}
	if u.UserID == "" || u.SessionID == "" {
		return NewError(KindInvalidInput, "utterance", "user_id and session_id are required", nil)
	}
	return nil
}
