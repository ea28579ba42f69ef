package classifier

import (
	"math"
	"strings"
)

// SimilarityScorer abstracts the tokenizer/embeddings backend as a
// pluggable component: score(text, category) -> [0,1]. A
// pattern-only fallback implementation is used when the main backend is
// unavailable, preserving the classifier's contract in degraded mode.
type SimilarityScorer interface {
	Score(normalizedText string, category string) float64
	// Available reports whether the backend is healthy. When false, the
	// classifier surfaces classifier_unavailable and falls back to the
	// pattern-only scorer.
	Available() bool
}

// categoryExemplars is a small bag-of-weights per category used by
// BagOfWordsScorer's cosine similarity. Signature
// terms (the ones the pattern family also keys on) carry weight 2;
// secondary synonyms carry weight 1.
var categoryExemplars = map[string]map[string]float64{
	"document-generation":  weights(map[string]float64{"create": 2, "pdf": 2, "report": 1, "document": 1, "about": 1}),
	"email":                weights(map[string]float64{"send": 2, "email": 2, "compose": 1, "message": 1}),
	"calendar":             weights(map[string]float64{"schedule": 2, "meeting": 2, "appointment": 1, "calendar": 1, "tomorrow": 1}),
	"web-search":           weights(map[string]float64{"search": 2, "find": 1, "look": 1, "information": 1, "query": 1}),
	"calculations":         weights(map[string]float64{"calculate": 2, "compute": 2, "plus": 1, "minus": 1, "total": 1}),
	"reminders":            weights(map[string]float64{"remind": 2, "reminder": 2, "forget": 1, "alert": 1}),
	"system-control":       weights(map[string]float64{"turn": 2, "volume": 1, "brightness": 1, "restart": 1, "shutdown": 1}),
	"general-conversation": weights(map[string]float64{"hello": 2, "hi": 1, "thanks": 1, "chat": 1}),
}

func weights(m map[string]float64) map[string]float64 { return m }

func textVector(normalized string) map[string]float64 {
	out := map[string]float64{}
	for _, w := range strings.Fields(normalized) {
		out[w] += 1
	}
	return out
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		dot += va * b[k]
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BagOfWordsScorer is the default SimilarityScorer: cosine similarity
// against a pre-fit bag-of-weights of category exemplars.
type BagOfWordsScorer struct{}

func (BagOfWordsScorer) Available() bool { return true }

func (BagOfWordsScorer) Score(normalizedText string, category string) float64 {
	exemplar, ok := categoryExemplars[category]
	if !ok {
		return 0
	}
	return cosine(textVector(normalizedText), exemplar)
}

// PatternOnlyScorer is the degraded-mode fallback: it always returns 0,
// so combined scoring reduces to the pattern signal alone.
type PatternOnlyScorer struct{}

func (PatternOnlyScorer) Available() bool        { return false }
func (PatternOnlyScorer) Score(string, string) float64 { return 0 }
