package workflow

import (
	"regexp"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// Template describes a known multi-step pattern. When an
// utterance matches a template's trigger, its step skeleton is used
// directly instead of the generic N-step synthesis fallback.
type Template struct {
	Name    string
	Trigger *regexp.Regexp
	Steps   []TemplateStep
}

// TemplateStep is one step skeleton within a Template.
type TemplateStep struct {
	CommandName string
	Category    model.Category
}

// templates are matched in order; the first trigger match wins.
var templates = []Template{
	{
		Name:    "document-creation",
		Trigger: regexp.MustCompile(`\b(create|draft|write|generate).*\b(report|document|pdf)\b.*\b(send|email|share)\b`),
		Steps: []TemplateStep{
			{CommandName: "draft_document", Category: model.CategoryDocumentGeneration},
			{CommandName: "send_document", Category: model.CategoryEmail},
		},
	},
	{
		Name:    "email-campaign",
		Trigger: regexp.MustCompile(`\bemail\b.*\b(everyone|all|team|list|group)\b`),
		Steps: []TemplateStep{
			{CommandName: "compose_email", Category: model.CategoryEmail},
			{CommandName: "resolve_recipients", Category: model.CategoryEmail},
			{CommandName: "send_bulk_email", Category: model.CategoryEmail},
		},
	},
	{
		Name:    "meeting-coordination",
		Trigger: regexp.MustCompile(`\b(schedule|set up|arrange)\b.*\bmeeting\b.*\b(and|then)\b.*\b(email|invite|notify)\b`),
		Steps: []TemplateStep{
			{CommandName: "find_slot", Category: model.CategoryCalendar},
			{CommandName: "create_event", Category: model.CategoryCalendar},
			{CommandName: "notify_attendees", Category: model.CategoryEmail},
		},
	},
	{
		Name:    "research-compilation",
		Trigger: regexp.MustCompile(`\b(research|look into|find out about)\b.*\b(and|then)\b.*\b(summarize|report|document|write)\b`),
		Steps: []TemplateStep{
			{CommandName: "search_sources", Category: model.CategoryWebSearch},
			{CommandName: "compile_findings", Category: model.CategoryWebSearch},
			{CommandName: "draft_summary", Category: model.CategoryDocumentGeneration},
		},
	},
}

// MatchTemplate returns the first template whose trigger matches the
// normalized utterance, or nil for no match.
func MatchTemplate(normalized string) *Template {
	for i := range templates {
		if templates[i].Trigger.MatchString(normalized) {
			return &templates[i]
		}
	}
	return nil
}
