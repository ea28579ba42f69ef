package classifier

import "github.com/haasonsaas/jarvisgate/internal/model"

// suggestionTemplates are the keyword-based templates used when confidence
// is below 0.5. Up to 3 are returned.
var suggestionTemplates = map[model.Category][]string{
	model.CategoryDocumentGeneration: {
		"Try: \"create a PDF report about <topic>\"",
		"Try: \"generate a document summarizing <topic>\"",
	},
	model.CategoryEmail: {
		"Try: \"send an email to <address> about <subject>\"",
	},
	model.CategoryCalendar: {
		"Try: \"schedule a meeting tomorrow at 3pm\"",
	},
	model.CategoryWebSearch: {
		"Try: \"search for <topic>\"",
	},
	model.CategoryCalculations: {
		"Try: \"calculate 12 plus 7\"",
	},
	model.CategoryReminders: {
		"Try: \"remind me to call Sam at 5pm\"",
	},
	model.CategorySystemControl: {
		"Try: \"turn off the lights\"",
	},
	model.CategoryUnknown: {
		"Try rephrasing with a clear action, like \"send\", \"search\", or \"schedule\".",
		"Ask for one of: document generation, email, calendar, web search, calculations, reminders, or system control.",
		"Say \"help\" to see example commands.",
	},
}

// BuildSuggestions returns up to 3 suggestion strings for category,
// falling back to the unknown-category templates when category has none
// of its own.
func BuildSuggestions(category model.Category) []string {
	templates := suggestionTemplates[category]
	if len(templates) == 0 {
		templates = suggestionTemplates[model.CategoryUnknown]
	}
	if len(templates) > 3 {
		templates = templates[:3]
	}
	out := make([]string, len(templates))
	copy(out, templates)
	return out
}
