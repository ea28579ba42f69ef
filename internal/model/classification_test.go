package model

import (
	"testing"
	"time"
)

func TestConfidenceLevelPartition(t *testing.T) {
	cases := []struct {
		confidence float64
		want       ConfidenceLevel
	}{
		{0.95, ConfidenceHigh},
		{0.8, ConfidenceHigh},
		{0.79, ConfidenceMedium},
		{0.5, ConfidenceMedium},
		{0.49, ConfidenceLow},
		{0.3, ConfidenceLow},
		{0.29, ConfidenceVeryLow},
		{0, ConfidenceVeryLow},
	}
	for _, c := range cases {
		r := ClassificationResult{Confidence: c.confidence}
		if got := r.ConfidenceLevel(); got != c.want {
			t.Errorf("confidence %v: got %v want %v", c.confidence, got, c.want)
		}
	}
}

func TestRequiresConfirmation(t *testing.T) {
	r := ClassificationResult{Confidence: 0.9, Category: CategoryEmail}
	if r.RequiresConfirmation() {
		t.Fatal("high confidence known category should not require confirmation")
	}
	r.Category = CategoryUnknown
	if !r.RequiresConfirmation() {
		t.Fatal("unknown category always requires confirmation")
	}
	r = ClassificationResult{Confidence: 0.5, Category: CategoryEmail}
	if !r.RequiresConfirmation() {
		t.Fatal("confidence below 0.7 requires confirmation")
	}
}

func TestNewClassificationResultSuggestionsInvariant(t *testing.T) {
	r := NewClassificationResult(CategoryEmail, "send", 0.9, nil, "x", "x", 1, 1, []string{"a", "b"})
	if len(r.Suggestions) != 0 {
		t.Fatal("suggestions must be empty when confidence >= 0.5")
	}
	r = NewClassificationResult(CategoryUnknown, "", 0.1, nil, "x", "x", 1, 1, []string{"a"})
	if len(r.Suggestions) == 0 {
		t.Fatal("suggestions must be non-empty when confidence < 0.5")
	}
}

func TestConversationContextHistoryBound(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := NewConversationContext("u1", "s1", now)
	for i := 0; i < MaxHistory+5; i++ {
		ctx.AppendInteraction(Interaction{
			Timestamp: now.Add(time.Duration(i) * time.Second),
			UserText:  "hi",
			Category:  CategoryGeneralConversation,
		})
	}
	if len(ctx.History) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(ctx.History), MaxHistory)
	}
	for i := 1; i < len(ctx.History); i++ {
		if ctx.History[i].Timestamp.Before(ctx.History[i-1].Timestamp) {
			t.Fatal("history timestamps must be non-decreasing")
		}
	}
}

func TestWorkflowCompletionPercentage(t *testing.T) {
	w := &MultiStepWorkflow{Steps: []*CommandStep{
		{Status: StepCompleted},
		{Status: StepCompleted},
		{Status: StepPending},
		{Status: StepPending},
	}}
	if got := w.CompletionPercentage(); got != 0.5 {
		t.Fatalf("completion percentage = %v, want 0.5", got)
	}
	w.Recompute(time.Now())
	if w.Status == WorkflowCompleted {
		t.Fatal("workflow should not be completed while steps are pending")
	}
	for _, s := range w.Steps {
		s.Status = StepCompleted
	}
	w.Recompute(time.Now())
	if w.Status != WorkflowCompleted {
		t.Fatal("workflow should be completed when every step is completed")
	}
}

func TestCommandStepTransitions(t *testing.T) {
	s := &CommandStep{Status: StepPending}
	if err := s.Transition(StepRunning, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.Transition(StepWaitingInput, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.Transition(StepRunning, time.Now()); err != nil {
		t.Fatal("waiting-input -> running must be legal")
	}
	if err := s.Transition(StepFailed, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.Transition(StepPending, time.Now()); err != nil {
		t.Fatal("failed -> pending must be legal for retry")
	}
	if err := s.Transition(StepCompleted, time.Now()); err == nil {
		t.Fatal("pending -> completed must be illegal")
	}
}

func TestMergeParametersPrecedence(t *testing.T) {
	merged := MergeParameters(
		AdvancedParameter{Name: "format", Value: "inferred-val", Source: SourceInferred, Confidence: 0.6},
		AdvancedParameter{Name: "format", Value: "literal-val", Source: SourceLiteral, Confidence: 0.9},
		AdvancedParameter{Name: "format", Value: "contextual-val", Source: SourceContextual, Confidence: 0.7},
	)
	if len(merged) != 1 || merged[0].Value != "literal-val" {
		t.Fatalf("expected literal to win precedence, got %+v", merged)
	}
}
