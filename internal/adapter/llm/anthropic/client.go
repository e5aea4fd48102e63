// Package anthropic wraps the official Anthropic SDK behind the small
// completion call the review and fix stages need.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client calls the Anthropic Messages API.
type Client struct {
	client anthropic.Client
}

// NewClient creates a client authenticated with apiKey. Extra request
// options (a custom base URL, for instance) are forwarded to the SDK.
func NewClient(apiKey string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{client: anthropic.NewClient(opts...)}
}

// Complete sends one prompt under a system instruction and returns the
// concatenated text content of the model's reply.
func (c *Client) Complete(ctx context.Context, system, prompt, model string, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("anthropic completion: response contained no text content")
	}
	return text, nil
}
