package service

import (
	"regexp"
	"strings"

	"idarati-backend/models"
)

// summaryRuneLimit caps a procedure-scoped summary before an ellipsis
// marker is appended.
const summaryRuneLimit = 520

var (
	bulletMarker = regexp.MustCompile(`^[-*•–—]\s+`)
	// ASCII or Arabic-Indic digits followed by '.', ')' or '-'.
	numberMarker = regexp.MustCompile(`^[0-9٠-٩]+[.)\-]\s+`)
)

// FocusOn derives a procedure-scoped view of a structured answer: the
// summary, checklist and links narrow to the chosen procedure while
// everything else is carried over from the aggregate answer. Pure and
// total: every fallback is defined for any input shape, and identical
// inputs always produce identical output.
func FocusOn(base models.StructuredResponse, procedure models.RetrievedProcedure) models.StructuredResponse {
	focused := base

	if summary := formatSummary(procedure.Content); summary != "" {
		focused.Summary = summary
	}

	if checklist := procedureChecklist(procedure); len(checklist) > 0 {
		focused.Checklist = checklist
	}

	if procedure.ProcedureLink != nil && *procedure.ProcedureLink != "" {
		focused.ProcedureLink = *procedure.ProcedureLink
	}
	if procedure.ThematicLink != nil && *procedure.ThematicLink != "" {
		focused.ThematicLink = *procedure.ThematicLink
	}

	return focused
}

// Unfocus returns the aggregate answer unchanged.
func Unfocus(base models.StructuredResponse) models.StructuredResponse {
	return base
}

// formatSummary trims the procedure content and truncates it to the
// rune limit with a trailing ellipsis marker. Empty content yields "".
func formatSummary(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}
	runes := []rune(trimmed)
	if len(runes) <= summaryRuneLimit {
		return trimmed
	}
	return string(runes[:summaryRuneLimit]) + "..."
}

// procedureChecklist prefers an explicit checklist from metadata, then
// a documents list, then lines derived from the free-text content.
func procedureChecklist(procedure models.RetrievedProcedure) []string {
	if items := procedure.Metadata.StringList("checklist"); len(items) > 0 {
		return items
	}
	if items := procedure.Metadata.StringList("documents"); len(items) > 0 {
		return items
	}
	return DeriveChecklist(procedure.Content)
}

// DeriveChecklist extracts document requirements from free text by
// keeping bullet and numbered lines and stripping their markers.
// Returns nil when the text holds no list at all.
func DeriveChecklist(content string) []string {
	if content == "" {
		return nil
	}

	var items []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		switch {
		case bulletMarker.MatchString(line):
			items = append(items, bulletMarker.ReplaceAllString(line, ""))
		case numberMarker.MatchString(line):
			items = append(items, numberMarker.ReplaceAllString(line, ""))
		}
	}
	return items
}
