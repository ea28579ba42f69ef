package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

func idSeq() func() string {
	n := 0
	return func() string {
		n++
		return time.Duration(n).String()
	}
}

type stubDispatcher struct {
	outcome Outcome
}

func (s stubDispatcher) Dispatch(context.Context, *model.CommandStep) Outcome { return s.outcome }

func TestDetectComplexitySimple(t *testing.T) {
	if c := DetectComplexity("send an email to bob"); c != model.ComplexitySimple {
		t.Fatalf("complexity = %v, want simple", c)
	}
}

func TestDetectComplexitySequential(t *testing.T) {
	c := DetectComplexity("create a report then send it to the team")
	if c != model.ComplexitySequential {
		t.Fatalf("complexity = %v, want sequential", c)
	}
}

func TestProcessSimpleUtteranceYieldsSingleStep(t *testing.T) {
	e := New(Config{NewID: idSeq()})
	result := model.NewClassificationResult(model.CategoryEmail, "send_email", 0.9, nil, "send an email", "send an email", 0, 0, nil)
	wf := e.Process("u1", "s1", "send an email", result)
	if len(wf.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(wf.Steps))
	}
	if wf.Complexity != model.ComplexitySimple {
		t.Fatalf("complexity = %v, want simple", wf.Complexity)
	}
}

func TestProcessCapsStepsAtMax(t *testing.T) {
	e := New(Config{NewID: idSeq()})
	text := "do a then do b then do c then do d then do e then do f then do g then do h then do i then do j then do k"
	result := model.NewClassificationResult(model.CategoryGeneralConversation, "chat", 0.9, nil, text, text, 0, 0, nil)
	wf := e.Process("u1", "s1", text, result)
	if len(wf.Steps) > model.MaxWorkflowSteps {
		t.Fatalf("steps = %d, want <= %d", len(wf.Steps), model.MaxWorkflowSteps)
	}
}

func TestContinueCompletesStepAndAdvances(t *testing.T) {
	e := New(Config{NewID: idSeq()})
	result := model.NewClassificationResult(model.CategoryEmail, "send_email", 0.9, nil, "send an email", "send an email", 0, 0, nil)
	wf := e.Process("u1", "s1", "send an email", result)

	dispatcher := stubDispatcher{outcome: Outcome{Result: "ok"}}
	updated, err := e.Continue(context.Background(), wf.ID, "", dispatcher)
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if updated.Status != model.WorkflowCompleted {
		t.Fatalf("status = %v, want completed", updated.Status)
	}
	if updated.CompletionPercentage() != 1.0 {
		t.Fatalf("completion = %v, want 1.0", updated.CompletionPercentage())
	}
}

func TestContinueRetriesFailedStepWithinBudget(t *testing.T) {
	e := New(Config{NewID: idSeq()})
	result := model.NewClassificationResult(model.CategoryEmail, "send_email", 0.9, nil, "send an email", "send an email", 0, 0, nil)
	wf := e.Process("u1", "s1", "send an email", result)

	dispatcher := stubDispatcher{outcome: Outcome{Err: errors.New("boom")}}
	updated, err := e.Continue(context.Background(), wf.ID, "", dispatcher)
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if updated.Steps[0].Status != model.StepPending {
		t.Fatalf("step status = %v, want pending (retry scheduled)", updated.Steps[0].Status)
	}
	if updated.Steps[0].RetryCount != 1 {
		t.Fatalf("retry count = %d, want 1", updated.Steps[0].RetryCount)
	}
}

func TestContinueStopsRetryingAfterMaxAttempts(t *testing.T) {
	e := New(Config{NewID: idSeq()})
	result := model.NewClassificationResult(model.CategoryEmail, "send_email", 0.9, nil, "send an email", "send an email", 0, 0, nil)
	wf := e.Process("u1", "s1", "send an email", result)

	dispatcher := stubDispatcher{outcome: Outcome{Err: errors.New("boom")}}
	for i := 0; i <= model.MaxStepRetries; i++ {
		updated, err := e.Continue(context.Background(), wf.ID, "", dispatcher)
		if err != nil {
			t.Fatalf("Continue iteration %d: %v", i, err)
		}
		wf = updated
	}
	if wf.Steps[0].Status != model.StepFailed {
		t.Fatalf("step status = %v, want failed after exhausting retries", wf.Steps[0].Status)
	}
	if wf.Status != model.WorkflowFailed {
		t.Fatalf("workflow status = %v, want failed", wf.Status)
	}
}

func TestContinueRefusesSecondStepWhileOneRunning(t *testing.T) {
	e := New(Config{NewID: idSeq()})
	text := "create a report then send it to the team"
	result := model.NewClassificationResult(model.CategoryDocumentGeneration, "draft", 0.9, nil, text, text, 0, 0, nil)
	wf := e.Process("u1", "s1", text, result)
	if len(wf.Steps) < 2 {
		t.Fatalf("expected at least 2 steps, got %d", len(wf.Steps))
	}
	wf.Steps[0].Status = model.StepRunning

	_, err := e.Continue(context.Background(), wf.ID, "", stubDispatcher{})
	if err == nil {
		t.Fatal("expected error when a step is already running")
	}
}

func TestContinueUnknownWorkflowErrors(t *testing.T) {
	e := New(Config{NewID: idSeq()})
	_, err := e.Continue(context.Background(), "missing", "", stubDispatcher{})
	if err == nil {
		t.Fatal("expected not-found error")
	}
}
