package fix

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fixTemplate = `Rewrite the following file so that every finding listed below is resolved. Keep all unrelated code exactly as it is.

File: %s

Current content:
%s

Findings to address:
%s

Respond with either a JSON object {"fixed_content": "<the complete corrected file>"} or the complete corrected file inside a single fenced code block. The response must contain the entire file, not a fragment.`

// buildFixPrompt renders the whole-file rewrite request.
func buildFixPrompt(filename, currentContent, findings string) string {
	return fmt.Sprintf(fixTemplate, filename, currentContent, findings)
}

// extractFixedContent pulls the corrected file body out of a model
// response. It first tries a JSON object with a "fixed_content" field, then
// the content of the first fenced code block.
func extractFixedContent(responseText string) (string, bool) {
	text := strings.TrimSpace(responseText)

	var wrapper struct {
		FixedContent *string `json:"fixed_content"`
	}
	if err := json.Unmarshal([]byte(text), &wrapper); err == nil && wrapper.FixedContent != nil {
		return *wrapper.FixedContent, true
	}

	if !strings.Contains(text, "```") {
		return "", false
	}

	var contentLines []string
	inBlock := false
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "```") && !inBlock:
			inBlock = true
		case strings.HasPrefix(line, "```") && inBlock:
			inBlock = false
		case inBlock:
			contentLines = append(contentLines, line)
		}
		if !inBlock && len(contentLines) > 0 {
			break
		}
	}
	if len(contentLines) == 0 {
		return "", false
	}
	return strings.Join(contentLines, "\n") + "\n", true
}
