package review

import (
	"encoding/json"
	"strings"

	"pr-reviewer/internal/domain"
)

// parseStrategy attempts one interpretation of a model response. It returns
// the raw finding objects and whether the shape matched.
type parseStrategy func(text string) ([]json.RawMessage, bool)

// strategies are tried in order; the first one whose shape matches wins.
// Model output shape is not contractually guaranteed, so each known shape
// gets its own strategy.
var strategies = []parseStrategy{
	parseArray,
	parseFindingsObject,
}

// parseFindings turns one model response into validated findings for the
// named file. Unparseable responses yield zero findings; invalid individual
// items are dropped without discarding their siblings.
func parseFindings(responseText, filename string) []domain.Finding {
	text := stripFences(responseText)

	var items []json.RawMessage
	for _, strategy := range strategies {
		if parsed, ok := strategy(text); ok {
			items = parsed
			break
		}
	}
	if items == nil {
		return nil
	}

	var findings []domain.Finding
	for _, item := range items {
		var f domain.Finding
		if err := json.Unmarshal(item, &f); err != nil {
			continue
		}
		if !validFinding(f) {
			continue
		}
		if f.File == "" {
			f.File = filename
		}
		findings = append(findings, f)
	}
	return findings
}

// parseArray matches a direct JSON array of finding objects.
func parseArray(text string) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, false
	}
	return items, true
}

// parseFindingsObject matches a JSON object wrapping a "findings" array.
func parseFindingsObject(text string) ([]json.RawMessage, bool) {
	var wrapper struct {
		Findings []json.RawMessage `json:"findings"`
	}
	if err := json.Unmarshal([]byte(text), &wrapper); err != nil {
		return nil, false
	}
	if wrapper.Findings == nil {
		return nil, false
	}
	return wrapper.Findings, true
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, leaving the enclosed text.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

// validFinding checks the fields the rest of the pipeline relies on.
func validFinding(f domain.Finding) bool {
	return f.Severity.Valid() && f.Category.Valid() && f.Title != ""
}
