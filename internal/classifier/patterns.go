package classifier

import "regexp"

// categoryPatterns is the per-category regex family used for pattern
// scoring: a match contributes 0.8, binary not graded.
var categoryPatterns = map[string][]*regexp.Regexp{
	"document-generation": {
		regexp.MustCompile(`\b(create|generate|write|draft|make)\b.*\b(pdf|doc(ument)?|report|file)\b`),
		regexp.MustCompile(`\bpdf\b`),
	},
	"email": {
		regexp.MustCompile(`\bsend\b.*\bemail\b`),
		regexp.MustCompile(`\bemail\b`),
		regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	},
	"calendar": {
		regexp.MustCompile(`\bschedule\b|\bmeeting\b|\bappointment\b|\bcalendar\b`),
		regexp.MustCompile(`\b(tomorrow|today|next week|on monday|on tuesday|on wednesday|on thursday|on friday)\b`),
	},
	"web-search": {
		regexp.MustCompile(`\bsearch\b|\blook up\b|\bfind (information|out)\b|\bgoogle\b`),
	},
	"calculations": {
		regexp.MustCompile(`[0-9]+\s*[\+\-\*/]\s*[0-9]+`),
		regexp.MustCompile(`\bcalculate\b|\bcompute\b|\bwhat is\b.*\b(plus|minus|times|divided by)\b`),
	},
	"reminders": {
		regexp.MustCompile(`\bremind\b|\breminder\b|\bdon't forget\b|\bdo not forget\b`),
	},
	"system-control": {
		regexp.MustCompile(`\b(turn (on|off)|set volume|brightness|shut down|restart|lock)\b`),
	},
	"general-conversation": {
		regexp.MustCompile(`\b(hello|hi|hey|how are you|thanks|thank you)\b`),
	},
}

// patternScore returns the maximum pattern contribution for category against
// normalized text: 0.8 if any pattern matches, else 0.
func patternScore(category string, normalized string) float64 {
	for _, re := range categoryPatterns[category] {
		if re.MatchString(normalized) {
			return 0.8
		}
	}
	return 0
}

// PatternsFor returns the source regex strings registered for category, in
// declaration order. Used by the gateway's pattern-listing endpoint.
func PatternsFor(category string) []string {
	patterns := categoryPatterns[category]
	out := make([]string, 0, len(patterns))
	for _, re := range patterns {
		out = append(out, re.String())
	}
	return out
}
