package github

import (
	"encoding/json"
	"fmt"
	"strings"

	"pr-reviewer/internal/transport"
)

const serviceName = "github"

// ErrNotFound matches any GitHub error for a missing resource; use with
// errors.Is to distinguish "file does not exist" from real failures.
var ErrNotFound = &transport.Error{Type: transport.ErrTypeNotFound, Service: serviceName}

// mapError converts a GitHub error response into a typed transport error so
// the shared retry logic can classify it.
func mapError(statusCode int, body []byte) *transport.Error {
	return transport.FromStatusCode(serviceName, statusCode, parseErrorMessage(statusCode, body))
}

// parseErrorMessage extracts a readable message from GitHub's error body.
func parseErrorMessage(statusCode int, body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		preview := strings.TrimSpace(string(body))
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		if preview == "" {
			return fmt.Sprintf("HTTP %d", statusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", statusCode, preview)
	}

	if len(errResp.Errors) > 0 {
		var details []string
		for _, e := range errResp.Errors {
			if e.Message != "" {
				details = append(details, e.Message)
			} else if e.Field != "" {
				details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Code))
			}
		}
		if len(details) > 0 {
			return fmt.Sprintf("%s: %s", errResp.Message, strings.Join(details, "; "))
		}
	}

	return errResp.Message
}
