// Package workflow implements the Workflow Engine: turning
// a classified utterance into a MultiStepWorkflow, then driving its steps
// one at a time to completion, with bounded per-step retry.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/jarvisgate/internal/classifier"
	"github.com/haasonsaas/jarvisgate/internal/model"
)

// Dispatcher executes one CommandStep against the Tool Broker. It is an interface here so the engine doesn't depend on the
// broker package directly; internal/broker supplies the concrete
// implementation.
type Dispatcher interface {
	Dispatch(ctx context.Context, step *model.CommandStep) Outcome
}

// Outcome is the result of one Dispatch call.
type Outcome struct {
	Result     any
	NeedsInput bool
	Prompt     string
	Err        error
}

// Engine holds in-flight workflows and advances them step by step
//. Workflow state lives only in memory: a restart loses
// in-flight workflows. No durable workflow persistence is implemented.
type Engine struct {
	mu        sync.Mutex
	workflows map[string]*model.MultiStepWorkflow
	now       func() time.Time
	newID     func() string
}

// Config configures an Engine.
type Config struct {
	Now   func() time.Time
	NewID func() string
}

// New builds an Engine.
func New(cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &Engine{
		workflows: map[string]*model.MultiStepWorkflow{},
		now:       now,
		newID:     newID,
	}
}

// Process builds a MultiStepWorkflow from a classified utterance): detect complexity, match a known template or fall back
// to generic N-step synthesis, then register the workflow pending its
// first Continue call.
func (e *Engine) Process(userID, sessionID, utterance string, result model.ClassificationResult) *model.MultiStepWorkflow {
	normalized := classifier.Normalize(utterance)
	complexity := DetectComplexity(normalized)
	now := e.now()

	wf := &model.MultiStepWorkflow{
		ID:                e.newID(),
		UserID:            userID,
		SessionID:         sessionID,
		OriginalUtterance: utterance,
		Complexity:        complexity,
		Status:            model.WorkflowPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	switch {
	case complexity == model.ComplexitySimple:
		wf.Steps = []*model.CommandStep{newStep(e.newID(), string(result.Category)+"_command", result.Category, result.Parameters)}
	default:
		if tmpl := MatchTemplate(normalized); tmpl != nil {
			for _, ts := range tmpl.Steps {
				wf.Steps = append(wf.Steps, newStep(e.newID(), ts.CommandName, ts.Category, result.Parameters))
			}
		} else {
			count := EstimateStepCount(normalized, complexity)
			for i := 0; i < count; i++ {
				name := fmt.Sprintf("step_%d_of_%d", i+1, count)
				wf.Steps = append(wf.Steps, newStep(e.newID(), name, result.Category, result.Parameters))
			}
		}
	}

	wf.Recompute(now)

	e.mu.Lock()
	e.workflows[wf.ID] = wf
	e.mu.Unlock()
	return wf
}

func newStep(id, name string, category model.Category, params map[string]any) *model.CommandStep {
	return &model.CommandStep{
		ID:          id,
		CommandName: name,
		Category:    category,
		Parameters:  params,
		Status:      model.StepPending,
		Timeout:     model.DefaultStepTimeout,
	}
}

// Get returns a workflow by id.
func (e *Engine) Get(id string) (*model.MultiStepWorkflow, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	wf, ok := e.workflows[id]
	return wf, ok
}

// RunningCount reports how many tracked workflows currently have a step
// running. Used by the gateway to bound its shutdown drain wait.
func (e *Engine) RunningCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, wf := range e.workflows {
		if wf.RunningStep() != nil {
			n++
		}
	}
	return n
}

// Continue advances the workflow by one step, enforcing the single-running-step
// invariant and retrying a failed step up to
// model.MaxStepRetries before giving up.
func (e *Engine) Continue(ctx context.Context, workflowID string, userInput string, dispatcher Dispatcher) (*model.MultiStepWorkflow, error) {
	e.mu.Lock()
	wf, ok := e.workflows[workflowID]
	e.mu.Unlock()
	if !ok {
		return nil, model.NewError(model.KindNotFound, "workflow", "workflow not found: "+workflowID, nil)
	}

	if wf.RunningStep() != nil {
		return nil, model.NewError(model.KindWorkflowStepFailed, "workflow", "a step is already running for workflow "+workflowID, nil)
	}

	step := nextStep(wf)
	if step == nil {
		wf.Recompute(e.now())
		return wf, nil
	}

	if step.Status == model.StepWaitingInput {
		if userInput == "" {
			return wf, nil
		}
		if step.Parameters == nil {
			step.Parameters = map[string]any{}
		}
		step.Parameters["user_input"] = userInput
	}

	now := e.now()
	if err := step.Transition(model.StepRunning, now); err != nil {
		return nil, err
	}

	outcome := dispatcher.Dispatch(ctx, step)
	completionTime := e.now()

	switch {
	case outcome.NeedsInput:
		_ = step.Transition(model.StepWaitingInput, completionTime)
		step.Result = outcome.Prompt
	case outcome.Err != nil:
		_ = step.Transition(model.StepFailed, completionTime)
		step.Error = outcome.Err.Error()
		if step.RetryCount < model.MaxStepRetries {
			step.RetryCount++
			_ = step.Transition(model.StepPending, completionTime)
		}
	default:
		_ = step.Transition(model.StepCompleted, completionTime)
		step.Result = outcome.Result
	}

	wf.Recompute(completionTime)
	return wf, nil
}

// nextStep returns the first step eligible to run: pending, or
// waiting-input.
func nextStep(wf *model.MultiStepWorkflow) *model.CommandStep {
	for _, s := range wf.Steps {
		if s.Status == model.StepPending || s.Status == model.StepWaitingInput {
			return s
		}
	}
	return nil
}
