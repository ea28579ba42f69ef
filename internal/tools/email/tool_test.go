package email

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Incr(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	return 0, nil
}

func (m *memStore) AddToSet(ctx context.Context, key, member string, ttl time.Duration) error {
	return nil
}

func (m *memStore) RemoveFromSet(ctx context.Context, key, member string) error { return nil }

func (m *memStore) Members(ctx context.Context, key string) ([]string, error) { return nil, nil }

func TestSendRecordsReceiptInSharedKV(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tool := New(store, func() time.Time { return now }, func() string { return "msg-1" })

	out, err := tool.Dispatch(context.Background(), "send", map[string]any{
		"to": "jane@example.com", "subject": "hi", "body": "hello there",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	receipt := out.(Receipt)
	if receipt.MessageID != "msg-1" || receipt.To != "jane@example.com" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	raw, ok, _ := store.Get(context.Background(), "email_record:msg-1")
	if !ok {
		t.Fatal("expected an email_record entry")
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record["to"] != "jane@example.com" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	tool := New(nil, nil, nil)
	_, err := tool.Dispatch(context.Background(), "send", map[string]any{"subject": "hi"})
	derr, ok := model.AsError(err)
	if !ok || derr.Kind != model.KindInvalidInput {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestSendDegradesWithoutSharedKV(t *testing.T) {
	tool := New(nil, nil, nil)
	out, err := tool.Dispatch(context.Background(), "send", map[string]any{"to": "a@b.com"})
	if err != nil {
		t.Fatalf("expected send to succeed without shared KV: %v", err)
	}
	if out.(Receipt).To != "a@b.com" {
		t.Fatalf("unexpected receipt: %+v", out)
	}
}
