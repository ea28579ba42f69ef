package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

type fakeHandler struct {
	caps      []string
	startErr  error
	stopErr   error
	dispatch  func(ctx context.Context, command string, params map[string]any) (any, error)
	started   bool
	stopped   bool
}

func (f *fakeHandler) Start(context.Context) error { f.started = true; return f.startErr }
func (f *fakeHandler) Stop(context.Context) error   { f.stopped = true; return f.stopErr }
func (f *fakeHandler) Capabilities() []string       { return f.caps }
func (f *fakeHandler) Dispatch(ctx context.Context, command string, params map[string]any) (any, error) {
	if f.dispatch != nil {
		return f.dispatch(ctx, command, params)
	}
	return "ok", nil
}

func TestStartAllIsolatesFailures(t *testing.T) {
	b := New(nil)
	good := &fakeHandler{caps: []string{"send"}}
	bad := &fakeHandler{caps: []string{"x"}, startErr: errors.New("boom")}
	b.Register("email", good)
	b.Register("broken", bad)

	errs := b.StartAll(context.Background())
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want exactly 1", errs)
	}
	status, _ := b.Status("email")
	if status.Status != model.ToolRunning {
		t.Fatalf("email status = %v, want running", status.Status)
	}
	status, _ = b.Status("broken")
	if status.Status != model.ToolError {
		t.Fatalf("broken status = %v, want error", status.Status)
	}
}

func TestDispatchRefusesUnknownTool(t *testing.T) {
	b := New(nil)
	if _, err := b.Dispatch(context.Background(), "missing", "x", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestDispatchRefusesStoppedTool(t *testing.T) {
	b := New(nil)
	b.Register("email", &fakeHandler{caps: []string{"send"}})
	if _, err := b.Dispatch(context.Background(), "email", "send", nil); err == nil {
		t.Fatal("expected error for non-running tool")
	}
}

func TestDispatchRefusesUndeclaredCapability(t *testing.T) {
	b := New(nil)
	b.Register("email", &fakeHandler{caps: []string{"send"}})
	b.StartAll(context.Background())
	if _, err := b.Dispatch(context.Background(), "email", "delete_everything", nil); err == nil {
		t.Fatal("expected error for undeclared capability")
	}
}

func TestDispatchSucceedsForDeclaredCapability(t *testing.T) {
	b := New(nil)
	b.Register("email", &fakeHandler{caps: []string{"send"}})
	b.StartAll(context.Background())
	result, err := b.Dispatch(context.Background(), "email", "send", map[string]any{"to": "bob@example.com"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Tool != "email" || result.Command != "send" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestShutdownStopsInReverseOrder(t *testing.T) {
	var order []string
	makeHandler := func(name string) *fakeHandler {
		return &fakeHandler{caps: []string{"x"}, dispatch: func(context.Context, string, map[string]any) (any, error) {
			order = append(order, name)
			return nil, nil
		}}
	}
	b := New(nil)
	first := makeHandler("first")
	second := makeHandler("second")
	b.Register("first", first)
	b.Register("second", second)
	b.StartAll(context.Background())

	b.Shutdown(context.Background())
	if !first.stopped || !second.stopped {
		t.Fatal("expected both tools stopped")
	}
	status, _ := b.Status("first")
	if status.Status != model.ToolStoppedS {
		t.Fatalf("first status = %v, want stopped", status.Status)
	}
}

func TestPingUpdatesLastPingForRunningTool(t *testing.T) {
	fixedNow := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New(func() time.Time { return fixedNow })
	b.Register("email", &fakeHandler{caps: []string{"send"}})
	b.StartAll(context.Background())
	if err := b.Ping("email"); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	status, _ := b.Status("email")
	if !status.LastPing.Equal(fixedNow) {
		t.Fatalf("last ping = %v, want %v", status.LastPing, fixedNow)
	}
}

func TestPingFailsForUnknownTool(t *testing.T) {
	b := New(nil)
	if err := b.Ping("missing"); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}
