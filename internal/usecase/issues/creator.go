// Package issues files one tracking issue per review finding.
package issues

import (
	"context"
	"fmt"
	"strings"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
)

// Host is the hosting collaborator operation this stage needs.
type Host interface {
	CreateIssue(ctx context.Context, title, body string, labels []string) (string, error)
}

// Creator files tracking issues for findings.
type Creator struct {
	host   Host
	logger observability.Logger
}

// NewCreator creates a Creator.
func NewCreator(host Host, logger observability.Logger) *Creator {
	return &Creator{host: host, logger: logger}
}

// CreateIssues files one issue per finding and returns the created URLs.
// A failure on one finding is logged and skipped; the rest are still filed.
func (c *Creator) CreateIssues(ctx context.Context, findings []domain.Finding, pr domain.PRInfo, cfg config.Config) []string {
	labels := []string{cfg.Labels.Review, cfg.Labels.Automated}

	var urls []string
	for _, finding := range findings {
		url, err := c.host.CreateIssue(ctx, issueTitle(finding, pr), issueBody(finding, pr), labels)
		if err != nil {
			c.logger.LogError(ctx, "failed to create issue", map[string]interface{}{
				"finding": finding.Title,
				"error":   err.Error(),
			})
			continue
		}
		urls = append(urls, url)
	}

	c.logger.LogInfo(ctx, "created issues", map[string]interface{}{
		"created":  len(urls),
		"findings": len(findings),
	})
	return urls
}

func issueTitle(f domain.Finding, pr domain.PRInfo) string {
	return fmt.Sprintf("[%s] %s (PR #%d)", strings.ToUpper(string(f.Severity)), f.Title, pr.Number)
}

func issueBody(f domain.Finding, pr domain.PRInfo) string {
	lines := []string{
		"## AI Review Finding",
		"",
		fmt.Sprintf("**Source PR:** #%d (%s)", pr.Number, pr.Title),
		fmt.Sprintf("**File:** `%s`", f.File),
	}

	if f.Line > 0 {
		lines = append(lines, fmt.Sprintf("**Line:** %d", f.Line))
	}

	lines = append(lines,
		fmt.Sprintf("**Severity:** %s", f.Severity),
		fmt.Sprintf("**Category:** %s", f.Category),
		"",
		"## Description",
		"",
		f.Description,
	)

	if f.SuggestedFix != "" {
		lines = append(lines,
			"",
			"## Suggested Fix",
			"",
			"```",
			f.SuggestedFix,
			"```",
		)
	}

	lines = append(lines,
		"",
		"---",
		"*This issue was automatically created by AI PR Reviewer.*",
	)

	return strings.Join(lines, "\n")
}
