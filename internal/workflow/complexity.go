package workflow

import (
	"regexp"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// connective markers used to detect multi-step structure in an utterance
//. Checked in priority order: a
// conditional marker wins over a sequential one, which wins over a
// compound one.
var (
	conditionalRe = regexp.MustCompile(`\b(if|unless|in case|whenever)\b`)
	sequentialRe  = regexp.MustCompile(`\b(then|after that|next|followed by|once (?:that's|that is) done)\b`)
	iterativeRe   = regexp.MustCompile(`\b(for each|every|repeat|until)\b`)
	compoundRe    = regexp.MustCompile(`\b(and|also|as well as)\b`)
)

// DetectComplexity classifies the structural shape of an utterance
//. Order matters: conditional > iterative > sequential >
// compound > simple, since an utterance can match more than one marker.
func DetectComplexity(normalized string) model.Complexity {
	switch {
	case conditionalRe.MatchString(normalized):
		return model.ComplexityConditional
	case iterativeRe.MatchString(normalized):
		return model.ComplexityIterative
	case sequentialRe.MatchString(normalized):
		return model.ComplexitySequential
	case compoundRe.MatchString(normalized):
		return model.ComplexityCompound
	default:
		return model.ComplexitySimple
	}
}

// EstimateStepCount derives a step count from the detected complexity and
// the number of connective markers present, capped at
// model.MaxWorkflowSteps.
func EstimateStepCount(normalized string, complexity model.Complexity) int {
	if complexity == model.ComplexitySimple {
		return 1
	}
	markers := len(sequentialRe.FindAllString(normalized, -1)) +
		len(compoundRe.FindAllString(normalized, -1)) +
		len(conditionalRe.FindAllString(normalized, -1)) +
		len(iterativeRe.FindAllString(normalized, -1))
	steps := markers + 1
	if steps < 2 {
		steps = 2
	}
	if steps > model.MaxWorkflowSteps {
		steps = model.MaxWorkflowSteps
	}
	return steps
}
