// Package email implements the email tool kind of the Tool Broker. No
// SMTP client is wired up: outbound delivery is abstracted away per the
// vendor-SDK non-goal, and Dispatch only records a durable send receipt
// in the shared KV, at key email_record:{message_id}.
package email

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
)

// recordTTL matches the persisted-state layout for email_record entries.
const recordTTL = 30 * 24 * time.Hour

// Receipt is returned from a successful "send" dispatch.
type Receipt struct {
	MessageID string    `json:"message_id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	SentAt    time.Time `json:"sent_at"`
}

// Tool is the email broker.Handler. shared may be nil, in which case
// send still succeeds but no record is retained.
type Tool struct {
	shared sharedkv.Store
	now    func() time.Time
	newID  func() string
}

// New builds an email tool.
func New(shared sharedkv.Store, now func() time.Time, newID func() string) *Tool {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Tool{shared: shared, now: now, newID: newID}
}

func (t *Tool) Start(ctx context.Context) error { return nil }
func (t *Tool) Stop(ctx context.Context) error  { return nil }

func (t *Tool) Capabilities() []string { return []string{"send"} }

func (t *Tool) Dispatch(ctx context.Context, command string, params map[string]any) (any, error) {
	if command != "send" {
		return nil, model.NewError(model.KindUnsupportedCommand, "email", "unsupported command: "+command, nil)
	}

	to, _ := params["to"].(string)
	subject, _ := params["subject"].(string)
	body, _ := params["body"].(string)
	if strings.TrimSpace(to) == "" {
		return nil, model.NewError(model.KindInvalidInput, "email", "to is required", nil)
	}

	receipt := Receipt{
		MessageID: t.newID(),
		To:        to,
		Subject:   subject,
		SentAt:    t.now(),
	}

	if t.shared != nil {
		record := map[string]any{
			"to":         to,
			"subject":    subject,
			"body_bytes": len(body),
			"sent_at":    receipt.SentAt.Format(time.RFC3339),
		}
		if raw, err := json.Marshal(record); err == nil {
			_ = t.shared.Set(ctx, "email_record:"+receipt.MessageID, raw, recordTTL)
		}
	}

	return receipt, nil
}
