package fix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFixedContentJSON(t *testing.T) {
	got, ok := extractFixedContent(`{"fixed_content": "package main\n\nfunc main() {}\n"}`)

	require.True(t, ok)
	assert.Equal(t, "package main\n\nfunc main() {}\n", got)
}

func TestExtractFixedContentFencedBlock(t *testing.T) {
	response := "Here is the corrected file:\n```go\npackage main\n\nfunc main() {}\n```\nAll findings addressed."

	got, ok := extractFixedContent(response)

	require.True(t, ok)
	assert.Equal(t, "package main\n\nfunc main() {}\n", got)
}

func TestExtractFixedContentUnterminatedBlock(t *testing.T) {
	got, ok := extractFixedContent("```go\npackage main")

	require.True(t, ok)
	assert.Equal(t, "package main\n", got)
}

func TestExtractFixedContentFailures(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"plain prose", "I cannot fix this file."},
		{"json without field", `{"content": "x"}`},
		{"empty fenced block", "```\n```"},
		{"empty response", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := extractFixedContent(tt.response)
			assert.False(t, ok)
		})
	}
}

func TestBuildFixPromptCarriesContext(t *testing.T) {
	prompt := buildFixPrompt("main.go", "package main", "- [high] bug: desc")

	assert.Contains(t, prompt, "File: main.go")
	assert.Contains(t, prompt, "package main")
	assert.Contains(t, prompt, "- [high] bug: desc")
}
