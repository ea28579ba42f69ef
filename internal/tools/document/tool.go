// Package document implements the document_generation tool kind of the
// Tool Broker: a small params-driven action dispatcher behind a
// capability list. Generated documents are never persisted past the
// process lifetime, only a reference is handed back to the caller.
package document

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/jarvisgate/internal/model"
)

// Reference describes a generated document. URL is an opaque in-memory
// handle, not a durable storage location.
type Reference struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

var supportedFormats = map[string]bool{"pdf": true, "docx": true, "txt": true, "md": true}

// Tool is the document_generation broker.Handler.
type Tool struct {
	mu      sync.Mutex
	now     func() time.Time
	newID   func() string
	content map[string]Reference // ID -> reference, evicted lazily on Stop
}

// New builds a document tool. now and newID default to time.Now and
// uuid.NewString when nil.
func New(now func() time.Time, newID func() string) *Tool {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Tool{now: now, newID: newID, content: map[string]Reference{}}
}

func (t *Tool) Start(ctx context.Context) error { return nil }

func (t *Tool) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.content = map[string]Reference{}
	return nil
}

func (t *Tool) Capabilities() []string { return []string{"generate", "fetch"} }

// Dispatch handles "generate" (build a new document reference from
// title/format/body) and "fetch" (retrieve a previously generated
// reference by id, for the duration of the process).
func (t *Tool) Dispatch(ctx context.Context, command string, params map[string]any) (any, error) {
	switch command {
	case "generate":
		return t.generate(params)
	case "fetch":
		return t.fetch(params)
	default:
		return nil, model.NewError(model.KindUnsupportedCommand, "document", "unsupported command: "+command, nil)
	}
}

func (t *Tool) generate(params map[string]any) (Reference, error) {
	title, _ := params["title"].(string)
	if title == "" {
		title = "Untitled document"
	}
	format, _ := params["format"].(string)
	if format == "" {
		format = "txt"
	}
	if !supportedFormats[format] {
		return Reference{}, model.NewError(model.KindInvalidInput, "document", fmt.Sprintf("unsupported format %q", format), nil)
	}
	body, _ := params["content"].(string)

	id := t.newID()
	ref := Reference{
		ID:        id,
		Title:     title,
		Format:    format,
		URL:       "doc://" + id,
		SizeBytes: len(body),
		CreatedAt: t.now(),
	}

	t.mu.Lock()
	t.content[ref.ID] = ref
	t.mu.Unlock()
	return ref, nil
}

func (t *Tool) fetch(params map[string]any) (Reference, error) {
	id, _ := params["id"].(string)
	t.mu.Lock()
	ref, ok := t.content[id]
	t.mu.Unlock()
	if !ok {
		return Reference{}, model.NewError(model.KindNotFound, "document", "no such document: "+id, nil)
	}
	return ref, nil
}
