// Package ai implements the ai tool kind of the Tool Broker: it wraps
// internal/aiprovider's cost-aware catalog and concrete vendor clients
// behind the broker.Handler contract, serving both the conversational
// fallback route (route_ai, used for general-conversation, reminders,
// system-control, and unknown categories) and the explicit /ai/process
// dispatch.
package ai

import (
	"context"
	"strings"

	"github.com/haasonsaas/jarvisgate/internal/aiprovider"
	"github.com/haasonsaas/jarvisgate/internal/model"
)

// Response is returned from a "complete" dispatch.
type Response struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	Vendor       string `json:"vendor"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Tool is the ai broker.Handler.
type Tool struct {
	catalog      *aiprovider.Catalog
	providers    map[aiprovider.Vendor]aiprovider.Provider
	usage        *aiprovider.UsageTracker
	defaultModel string
}

// New builds an ai tool. providers need not cover every vendor the
// catalog knows about: selection skips vendors with no registered
// client. defaultModel, if non-empty, is preferred when the caller
// doesn't name one and it resolves to a registered provider.
func New(catalog *aiprovider.Catalog, providers map[aiprovider.Vendor]aiprovider.Provider, usage *aiprovider.UsageTracker, defaultModel string) *Tool {
	return &Tool{catalog: catalog, providers: providers, usage: usage, defaultModel: defaultModel}
}

func (t *Tool) Start(ctx context.Context) error {
	if len(t.providers) == 0 {
		return model.NewError(model.KindInternal, "ai", "no ai providers registered", nil)
	}
	return nil
}

func (t *Tool) Stop(ctx context.Context) error { return nil }

func (t *Tool) Capabilities() []string { return []string{"route_ai", "complete"} }

func (t *Tool) Dispatch(ctx context.Context, command string, params map[string]any) (any, error) {
	switch command {
	case "route_ai":
		prompt, _ := params["prompt"].(string)
		resp, err := t.complete(ctx, prompt, "", "", 0)
		if err != nil {
			return nil, err
		}
		return resp.Text, nil
	case "complete":
		prompt, _ := params["prompt"].(string)
		system, _ := params["system"].(string)
		reqModel, _ := params["model"].(string)
		maxTokens := 0
		switch n := params["max_tokens"].(type) {
		case int:
			maxTokens = n
		case float64:
			maxTokens = int(n)
		}
		return t.complete(ctx, prompt, system, reqModel, maxTokens)
	default:
		return nil, model.NewError(model.KindUnsupportedCommand, "ai", "unsupported command: "+command, nil)
	}
}

func (t *Tool) complete(ctx context.Context, prompt, system, requestedModel string, maxTokens int) (Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return Response{}, model.NewError(model.KindInvalidInput, "ai", "prompt is required", nil)
	}

	chosen, provider, ok := t.resolve(requestedModel)
	if !ok {
		return Response{}, model.NewError(model.KindToolUnknown, "ai", "no available model satisfies the request", nil)
	}

	resp, err := provider.Complete(ctx, aiprovider.CompletionRequest{
		Model:     chosen.ID,
		System:    system,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		if aiprovider.ShouldFailover(err) {
			return Response{}, model.NewError(model.KindToolError, "ai", "provider call failed, failover exhausted", err)
		}
		return Response{}, model.NewError(model.KindToolError, "ai", "provider call failed", err)
	}
	if t.usage != nil {
		t.usage.Record(ctx, chosen.Vendor, chosen.ID, resp)
	}
	return Response{
		Text:         resp.Text,
		Model:        chosen.ID,
		Vendor:       string(chosen.Vendor),
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// resolve picks a model+provider pair. A caller-named model is honored
// only if a provider is registered for its vendor; otherwise the
// cheapest available model (across registered vendors) is selected,
// preferring defaultModel when it resolves.
func (t *Tool) resolve(requestedModel string) (aiprovider.Model, aiprovider.Provider, bool) {
	if requestedModel != "" {
		if m, ok := t.catalog.Get(requestedModel); ok {
			if p, ok := t.providers[m.Vendor]; ok {
				return m, p, true
			}
		}
	}
	if t.defaultModel != "" {
		if m, ok := t.catalog.Get(t.defaultModel); ok {
			if p, ok := t.providers[m.Vendor]; ok {
				return m, p, true
			}
		}
	}

	var best aiprovider.Model
	found := false
	for _, m := range t.catalog.List() {
		if _, ok := t.providers[m.Vendor]; !ok {
			continue
		}
		cost := m.InputPricePerM + m.OutputPricePerM
		if !found || cost < best.InputPricePerM+best.OutputPricePerM {
			best = m
			found = true
		}
	}
	if !found {
		return aiprovider.Model{}, nil, false
	}
	return best, t.providers[best.Vendor], true
}
