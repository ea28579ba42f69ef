// Package calendar implements the calendar tool kind of the Tool
// Broker: a process-local event store standing in for a real calendar
// provider integration, which is abstracted away per the vendor-SDK
// non-goal the same way email's SMTP server is.
package calendar

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/jarvisgate/internal/model"
)

// Event is one scheduled calendar entry.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	When      time.Time `json:"when"`
	Attendees []string  `json:"attendees,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Tool is the calendar broker.Handler.
type Tool struct {
	mu     sync.RWMutex
	events map[string]Event
	now    func() time.Time
	newID  func() string
}

// New builds a calendar tool.
func New(now func() time.Time, newID func() string) *Tool {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Tool{events: map[string]Event{}, now: now, newID: newID}
}

func (t *Tool) Start(ctx context.Context) error { return nil }

func (t *Tool) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = map[string]Event{}
	return nil
}

func (t *Tool) Capabilities() []string { return []string{"schedule", "list", "cancel"} }

func (t *Tool) Dispatch(ctx context.Context, command string, params map[string]any) (any, error) {
	switch command {
	case "schedule":
		return t.schedule(params)
	case "list":
		return t.list(), nil
	case "cancel":
		return t.cancel(params)
	default:
		return nil, model.NewError(model.KindUnsupportedCommand, "calendar", "unsupported command: "+command, nil)
	}
}

func (t *Tool) schedule(params map[string]any) (Event, error) {
	title, _ := params["title"].(string)
	if strings.TrimSpace(title) == "" {
		return Event{}, model.NewError(model.KindInvalidInput, "calendar", "title is required", nil)
	}
	whenStr, _ := params["when"].(string)
	when, err := time.Parse(time.RFC3339, whenStr)
	if err != nil {
		return Event{}, model.NewError(model.KindInvalidInput, "calendar", "when must be an RFC3339 timestamp", err)
	}
	var attendees []string
	if raw, ok := params["attendees"].([]any); ok {
		for _, a := range raw {
			if s, ok := a.(string); ok {
				attendees = append(attendees, s)
			}
		}
	}

	event := Event{
		ID:        t.newID(),
		Title:     title,
		When:      when,
		Attendees: attendees,
		CreatedAt: t.now(),
	}
	t.mu.Lock()
	t.events[event.ID] = event
	t.mu.Unlock()
	return event, nil
}

func (t *Tool) list() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Event, 0, len(t.events))
	for _, e := range t.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].When.Before(out[j].When) })
	return out
}

func (t *Tool) cancel(params map[string]any) (bool, error) {
	id, _ := params["id"].(string)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.events[id]; !ok {
		return false, model.NewError(model.KindNotFound, "calendar", "no such event: "+id, nil)
	}
	delete(t.events, id)
	return true, nil
}
