package review

import (
	"fmt"
	"strings"

	"pr-reviewer/internal/domain"
)

// systemPrompt instructs the model to return structured findings only.
const systemPrompt = `You are an expert code reviewer. You analyze pull request changes and report concrete, actionable findings.

Respond with a JSON array of finding objects. Each finding has:
- "file": the file path under review
- "line": the line number in the new version of the file (omit if not tied to a line)
- "severity": one of "critical", "high", "medium", "low"
- "category": the issue category (from the list given in the request)
- "title": a short summary of the issue
- "description": what is wrong and why it matters
- "suggested_fix": a concrete correction, when one exists (omit otherwise)

Only report real issues in the changed code. If there are none, respond with an empty JSON array. Do not include any text outside the JSON.`

const fileTemplate = `Review the following file from a pull request.

Pull request: %s
Description: %s

File: %s

Diff:
%s

Full file content:
%s

Allowed categories: %s
Report at most %d findings for this file.`

// buildFilePrompt renders the per-file review request.
func buildFilePrompt(pr domain.PRInfo, fc domain.FileChange, categories []domain.Category, maxFindings int) string {
	body := pr.Body
	if body == "" {
		body = "(no description)"
	}
	patch := fc.Patch
	if patch == "" {
		patch = "(no diff available)"
	}
	content := fc.Content
	if content == "" {
		content = "(content not loaded)"
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}

	return fmt.Sprintf(fileTemplate,
		pr.Title, body, fc.Filename, patch, content,
		strings.Join(names, ", "), maxFindings)
}
