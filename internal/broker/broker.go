// Package broker implements the tool broker core: a registry of named
// tool servers, each started/stopped/dispatched to independently,
// adapted from the teacher's internal/mcp bridge/registry pattern
// (internal/mcp/bridge.go, internal/mcp/manager.go).
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// Handler is the contract every concrete tool kind (document_generation,
// email, calendar, web_search, ai) implements.
type Handler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Capabilities() []string
	Dispatch(ctx context.Context, command string, params map[string]any) (any, error)
}

type registeredTool struct {
	handler    Handler
	descriptor model.ToolDescriptor
}

// Broker holds the registered tool set and their lifecycle state.
type Broker struct {
	mu    sync.RWMutex
	tools map[string]*registeredTool
	order []string // registration order, for reverse-order shutdown
	now   func() time.Time
}

// New builds an empty Broker.
func New(now func() time.Time) *Broker {
	if now == nil {
		now = time.Now
	}
	return &Broker{tools: map[string]*registeredTool{}, now: now}
}

// Register adds a tool under name with its declared capabilities
// (command names it accepts). Registration order determines shutdown
// order: tools are stopped in the opposite order they were started.
func (b *Broker) Register(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tools[name] = &registeredTool{
		handler: handler,
		descriptor: model.ToolDescriptor{
			Name:         name,
			Capabilities: handler.Capabilities(),
			Status:       model.ToolInitialized,
		},
	}
	b.order = append(b.order, name)
}

// StartAll starts every registered tool, isolating failures: one tool's
// start error doesn't prevent the others from starting.
func (b *Broker) StartAll(ctx context.Context) map[string]error {
	b.mu.Lock()
	names := append([]string(nil), b.order...)
	b.mu.Unlock()

	errs := map[string]error{}
	for _, name := range names {
		b.mu.RLock()
		tool := b.tools[name]
		b.mu.RUnlock()
		if tool == nil {
			continue
		}
		err := tool.handler.Start(ctx)
		b.mu.Lock()
		if err != nil {
			tool.descriptor.Status = model.ToolError
			tool.descriptor.ErrorMessage = err.Error()
			errs[name] = err
		} else {
			tool.descriptor.Status = model.ToolRunning
			tool.descriptor.LastPing = b.now()
		}
		b.mu.Unlock()
	}
	return errs
}

// Shutdown stops every tool in the reverse of its registration order,
// isolating failures the same way StartAll does.
func (b *Broker) Shutdown(ctx context.Context) map[string]error {
	b.mu.Lock()
	names := append([]string(nil), b.order...)
	b.mu.Unlock()

	errs := map[string]error{}
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		b.mu.RLock()
		tool := b.tools[name]
		b.mu.RUnlock()
		if tool == nil || tool.descriptor.Status != model.ToolRunning {
			continue
		}
		err := tool.handler.Stop(ctx)
		b.mu.Lock()
		if err != nil {
			tool.descriptor.Status = model.ToolError
			tool.descriptor.ErrorMessage = err.Error()
			errs[name] = err
		} else {
			tool.descriptor.Status = model.ToolStoppedS
		}
		b.mu.Unlock()
	}
	return errs
}

// Status returns the descriptor for one tool.
func (b *Broker) Status(name string) (model.ToolDescriptor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	tool, ok := b.tools[name]
	if !ok {
		return model.ToolDescriptor{}, false
	}
	return tool.descriptor, true
}

// StatusAll returns every tool's descriptor.
func (b *Broker) StatusAll() []model.ToolDescriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.ToolDescriptor, 0, len(b.tools))
	for _, name := range b.order {
		if tool, ok := b.tools[name]; ok {
			out = append(out, tool.descriptor)
		}
	}
	return out
}

// Ping refreshes a running tool's LastPing.
func (b *Broker) Ping(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tool, ok := b.tools[name]
	if !ok {
		return model.NewError(model.KindToolUnknown, "broker", "unknown tool: "+name, nil)
	}
	if tool.descriptor.Status != model.ToolRunning {
		return model.NewError(model.KindToolStopped, "broker", "tool not running: "+name, nil)
	}
	tool.descriptor.LastPing = b.now()
	return nil
}

// Dispatch runs command against the named tool, refusing unless the tool
// is running and declares the command as a capability.
func (b *Broker) Dispatch(ctx context.Context, name, command string, params map[string]any) (model.DispatchResult, error) {
	b.mu.RLock()
	tool, ok := b.tools[name]
	b.mu.RUnlock()
	if !ok {
		return model.DispatchResult{}, model.NewError(model.KindToolUnknown, "broker", "unknown tool: "+name, nil)
	}
	if tool.descriptor.Status != model.ToolRunning {
		return model.DispatchResult{}, model.NewError(model.KindToolStopped, "broker", "tool not running: "+name, nil)
	}
	if !tool.descriptor.HasCapability(command) {
		return model.DispatchResult{}, model.NewError(model.KindUnsupportedCommand, "broker", "tool "+name+" has no capability "+command, nil)
	}

	output, err := tool.handler.Dispatch(ctx, command, params)
	if err != nil {
		if ctx.Err() != nil {
			return model.DispatchResult{}, model.NewError(model.KindToolTimeout, "broker", "tool "+name+" timed out", err)
		}
		return model.DispatchResult{}, model.NewError(model.KindToolError, "broker", "tool "+name+" dispatch failed", err)
	}
	return model.DispatchResult{Tool: name, Command: command, Output: output}, nil
}
