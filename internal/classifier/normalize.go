package classifier

import (
	"regexp"
	"strings"
)

// fillerTokens is the small fixed list of filler words stripped during
// normalization.
var fillerTokens = map[string]bool{
	"um": true, "uh": true, "like": true, "please": true, "just": true,
	"kinda": true, "sorta": true, "basically": true, "actually": true,
	"a": true, "an": true, "the": true, "to": true,
}

// contractions expands the common contractions normalization calls for.
var contractions = map[string]string{
	"can't":   "cannot",
	"won't":   "will not",
	"don't":   "do not",
	"didn't":  "did not",
	"i'm":     "i am",
	"it's":    "it is",
	"let's":   "let us",
	"i'll":    "i will",
	"i've":    "i have",
	"what's":  "what is",
	"that's":  "that is",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize lowercases, expands contractions, strips filler tokens, and
// collapses whitespace, preserving the caller's raw text separately
//. Normalization never fails: an all-filler or empty
// input normalizes to the empty string.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	for contraction, expansion := range contractions {
		lower = strings.ReplaceAll(lower, contraction, expansion)
	}
	words := strings.Fields(lower)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		trimmed := strings.Trim(w, ".,!?;:")
		if fillerTokens[trimmed] {
			continue
		}
		kept = append(kept, w)
	}
	return whitespaceRe.ReplaceAllString(strings.Join(kept, " "), " ")
}
