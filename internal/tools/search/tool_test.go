package search

import (
	"context"
	"testing"

	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/websearch"
)

type fakeProvider struct {
	name    websearch.Backend
	results []websearch.Result
}

func (p fakeProvider) Name() websearch.Backend { return p.name }

func (p fakeProvider) Search(ctx context.Context, query string, count int) ([]websearch.Result, error) {
	return p.results, nil
}

func TestSearchDelegatesToAggregator(t *testing.T) {
	provider := fakeProvider{
		name: websearch.BackendDuckDuckGo,
		results: []websearch.Result{
			{Title: "Go", URL: "https://go.dev", Snippet: "The Go programming language"},
		},
	}
	tool := New(websearch.NewAggregator(nil, provider))

	out, err := tool.Dispatch(context.Background(), "search", map[string]any{"query": "golang", "n": 3})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	results := out.([]websearch.Result)
	if len(results) != 1 || results[0].URL != "https://go.dev" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	tool := New(websearch.NewAggregator(nil))
	_, err := tool.Dispatch(context.Background(), "search", map[string]any{})
	derr, ok := model.AsError(err)
	if !ok || derr.Kind != model.KindInvalidInput {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestSearchRejectsUnknownCommand(t *testing.T) {
	tool := New(websearch.NewAggregator(nil))
	_, err := tool.Dispatch(context.Background(), "crawl", map[string]any{"query": "x"})
	derr, ok := model.AsError(err)
	if !ok || derr.Kind != model.KindUnsupportedCommand {
		t.Fatalf("expected unsupported_command, got %v", err)
	}
}
