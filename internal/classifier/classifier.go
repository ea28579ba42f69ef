// Package classifier implements the Intent Classifier:
// normalize, score each known category by pattern + similarity, select the
// best, extract parameters, and emit a ClassificationResult.
package classifier

import (
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// contextBoost is added when a category matches the context's last
// category.
const contextBoost = 0.1

// unknownThreshold is the minimum combined score to avoid "unknown".
const unknownThreshold = 0.3

// ContextSnapshot is the immutable view of conversation context the
// classifier is given — never a live handle.
type ContextSnapshot struct {
	LastCategory model.Category
}

// Classifier implements classify(utterance, context?) -> ClassificationResult
//. It is pure given its inputs and injected similarity
// backend, plus a clock for timing fields.
type Classifier struct {
	similarity SimilarityScorer
	now        func() time.Time
}

// New builds a Classifier. scorer may be nil, defaulting to BagOfWordsScorer.
func New(scorer SimilarityScorer) *Classifier {
	if scorer == nil {
		scorer = BagOfWordsScorer{}
	}
	return &Classifier{similarity: scorer, now: time.Now}
}

// Unavailable reports whether the classifier's similarity backend is down;
// callers surface classifier_unavailable while still returning a
// (degraded, pattern-only) result rather than failing outright.
func (c *Classifier) Unavailable() bool {
	return !c.similarity.Available()
}

// Classify runs the classification algorithm. It never returns an
// error: normalization and scoring never fail (an empty/collapsed string
// scores 0 for every category and emits unknown).
func (c *Classifier) Classify(u model.Utterance, ctx *ContextSnapshot) model.ClassificationResult {
	preStart := c.now()
	normalized := Normalize(u.Text)
	preMS := float64(c.now().Sub(preStart).Microseconds()) / 1000.0

	classifyStart := c.now()
	best := model.CategoryUnknown
	bestScore := -1.0
	for _, category := range model.Categories {
		score := c.score(string(category), normalized, ctx, category)
		if score > bestScore {
			bestScore = score
			best = category
		}
	}
	if bestScore < unknownThreshold {
		best = model.CategoryUnknown
		bestScore = clampConfidence(bestScore)
	}
	confidence := clampConfidence(bestScore)

	params := map[string]any{}
	if best != model.CategoryUnknown {
		params = ExtractParameters(best, normalized)
	}
	for k, v := range u.Parameters {
		params[k] = v
	}

	var suggestions []string
	if confidence < 0.5 {
		suggestions = BuildSuggestions(best)
	}
	classMS := float64(c.now().Sub(classifyStart).Microseconds()) / 1000.0

	return model.NewClassificationResult(best, intentFor(best), confidence, params, normalized, u.Text, preMS, classMS, suggestions)
}

func (c *Classifier) score(categoryKey string, normalized string, ctx *ContextSnapshot, category model.Category) float64 {
	if normalized == "" {
		return 0
	}
	pattern := patternScore(categoryKey, normalized)
	similarity := c.similarity.Score(normalized, categoryKey)
	combined := 0.6*pattern + 0.4*similarity
	if ctx != nil && ctx.LastCategory == category {
		combined += contextBoost
	}
	return combined
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// intentFor derives a coarse intent string per category; intent strings
// are implementation-defined beyond "per-category
// refinement" (GLOSSARY).
func intentFor(category model.Category) string {
	switch category {
	case model.CategoryDocumentGeneration:
		return "generate_document"
	case model.CategoryEmail:
		return "send_email"
	case model.CategoryCalendar:
		return "schedule_event"
	case model.CategoryWebSearch:
		return "search_web"
	case model.CategoryCalculations:
		return "calculate"
	case model.CategoryReminders:
		return "set_reminder"
	case model.CategorySystemControl:
		return "control_system"
	case model.CategoryGeneralConversation:
		return "converse"
	default:
		return "unknown"
	}
}
