package broker

import (
	"context"

	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/workflow"
)

// categoryTool maps a classification category to the tool name the broker
// routes it to. general-conversation, reminders, system-control, and
// unknown have no dedicated tool kind and route to the ai tool for a
// best-effort conversational response.
var categoryTool = map[model.Category]string{
	model.CategoryDocumentGeneration: "document_generation",
	model.CategoryEmail:              "email",
	model.CategoryCalendar:           "calendar",
	model.CategoryWebSearch:          "web_search",
}

// WorkflowDispatcher adapts a Broker to internal/workflow.Dispatcher so
// the Workflow Engine can drive steps without depending on the broker
// package's concrete types.
type WorkflowDispatcher struct {
	broker *Broker
}

// NewWorkflowDispatcher wraps broker for use by the Workflow Engine.
func NewWorkflowDispatcher(broker *Broker) *WorkflowDispatcher {
	return &WorkflowDispatcher{broker: broker}
}

// Dispatch routes a CommandStep to its tool by category and translates
// the broker's DispatchResult/error into a workflow.Outcome, satisfying
// internal/workflow.Dispatcher.
func (d *WorkflowDispatcher) Dispatch(ctx context.Context, step *model.CommandStep) workflow.Outcome {
	toolName, ok := categoryTool[step.Category]
	if !ok {
		toolName = "ai"
	}
	result, err := d.broker.Dispatch(ctx, toolName, step.CommandName, step.Parameters)
	if err != nil {
		return workflow.Outcome{Err: err}
	}
	return workflow.Outcome{Result: result.Output}
}
