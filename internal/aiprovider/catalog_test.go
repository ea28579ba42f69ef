package aiprovider

import "testing"

func TestSelectOptimalPicksCheapestMatchingCapability(t *testing.T) {
	c := NewCatalog()
	m, ok := c.SelectOptimal(SelectionRequest{RequiredCapability: CapTools})
	if !ok {
		t.Fatal("expected a model with tools capability")
	}
	if !m.HasCapability(CapTools) {
		t.Fatalf("selected model %s lacks tools capability", m.ID)
	}
}

func TestSelectOptimalRespectsBudget(t *testing.T) {
	c := NewCatalog()
	_, ok := c.SelectOptimal(SelectionRequest{RequiredCapability: CapReasoning, MaxBudgetPerM: 1.0})
	if ok {
		t.Fatal("expected no reasoning model to fit under a 1.0/M budget")
	}
}

func TestSelectOptimalRespectsContextLength(t *testing.T) {
	c := NewCatalog()
	_, ok := c.SelectOptimal(SelectionRequest{MinContextLength: 1_000_000})
	if ok {
		t.Fatal("expected no model to satisfy a 1M token context requirement")
	}
}

func TestCatalogGetByID(t *testing.T) {
	c := NewCatalog()
	if _, ok := c.Get("claude-sonnet"); !ok {
		t.Fatal("expected builtin claude-sonnet model")
	}
	if _, ok := c.Get("does-not-exist"); ok {
		t.Fatal("expected lookup miss for unknown model")
	}
}
