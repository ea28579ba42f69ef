// Package search implements the web_search tool kind of the Tool
// Broker by wrapping internal/websearch's provider fan-out/merge/rank
// aggregator behind the broker.Handler contract.
package search

import (
	"context"

	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/websearch"
)

// Tool is the web_search broker.Handler.
type Tool struct {
	aggregator *websearch.Aggregator
}

// New wraps an already-built Aggregator.
func New(aggregator *websearch.Aggregator) *Tool {
	return &Tool{aggregator: aggregator}
}

func (t *Tool) Start(ctx context.Context) error { return nil }
func (t *Tool) Stop(ctx context.Context) error  { return nil }

func (t *Tool) Capabilities() []string { return []string{"search"} }

func (t *Tool) Dispatch(ctx context.Context, command string, params map[string]any) (any, error) {
	if command != "search" {
		return nil, model.NewError(model.KindUnsupportedCommand, "web_search", "unsupported command: "+command, nil)
	}
	query, _ := params["query"].(string)
	if query == "" {
		return nil, model.NewError(model.KindInvalidInput, "web_search", "query is required", nil)
	}
	count := 5
	switch n := params["n"].(type) {
	case int:
		count = n
	case float64:
		count = int(n)
	}

	results, err := t.aggregator.Search(ctx, query, count)
	if err != nil {
		return nil, model.NewError(model.KindToolError, "web_search", "search failed", err)
	}
	return results, nil
}
