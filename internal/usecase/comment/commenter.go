// Package comment renders and posts the end-of-run summary on the reviewed
// pull request.
package comment

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
)

// Host is the hosting collaborator operation this stage needs.
type Host interface {
	CreateComment(ctx context.Context, number int, body string) error
}

// Commenter posts the run summary.
type Commenter struct {
	host   Host
	logger observability.Logger
}

// NewCommenter creates a Commenter.
func NewCommenter(host Host, logger observability.Logger) *Commenter {
	return &Commenter{host: host, logger: logger}
}

var titleCaser = cases.Title(language.English)

// PostSummary posts one summary comment for the run: an approval note when
// no findings survived, otherwise the findings table with issue, fix-PR,
// and check-result sections.
func (c *Commenter) PostSummary(ctx context.Context, prNumber int, result domain.ReviewResult) error {
	var body string
	if result.HasIssues() {
		body = buildFindingsComment(result)
	} else {
		body = buildApproveComment()
	}

	if err := c.host.CreateComment(ctx, prNumber, body); err != nil {
		c.logger.LogError(ctx, "failed to post summary comment", map[string]interface{}{
			"pr":    prNumber,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func buildApproveComment() string {
	return "## AI Review: No Issues Found\n\n" +
		"The AI reviewer did not find any issues in this PR. Looking good!\n\n" +
		"---\n" +
		"*Reviewed by AI PR Reviewer*"
}

func buildFindingsComment(result domain.ReviewResult) string {
	lines := []string{
		"## AI Review Summary",
		"",
		fmt.Sprintf("Found **%d** issue(s) (%d critical).", len(result.Findings), result.CriticalCount()),
		"",
		"### Findings",
		"",
		"| Severity | Category | File | Title |",
		"|----------|----------|------|-------|",
	}

	for _, f := range result.Findings {
		lines = append(lines, fmt.Sprintf("| %s | %s | `%s` | %s |",
			severityBadge(f.Severity), titleCaser.String(string(f.Category)), f.File, f.Title))
	}
	lines = append(lines, "")

	if len(result.IssueURLs) > 0 {
		lines = append(lines, "### Created Issues", "")
		for i, url := range result.IssueURLs {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, url))
		}
		lines = append(lines, "")
	}

	if result.FixPRURL != "" {
		lines = append(lines,
			"### Fix PR",
			"",
			fmt.Sprintf("A fix PR has been created: %s", result.FixPRURL),
			"",
		)
	}

	if len(result.TestResults) > 0 {
		lines = append(lines, "### CI Check Results (Fix PR)", "")
		for _, tr := range result.TestResults {
			status := tr.Conclusion
			if status == "" {
				status = tr.Status
			}
			lines = append(lines, fmt.Sprintf("- %s **%s**: %s", checkIcon(status), tr.Name, status))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"---",
		"*Reviewed by AI PR Reviewer*",
	)

	return strings.Join(lines, "\n")
}

func severityBadge(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "🔴 critical"
	case domain.SeverityHigh:
		return "🟠 high"
	case domain.SeverityMedium:
		return "🟡 medium"
	case domain.SeverityLow:
		return "🔵 low"
	default:
		return string(s)
	}
}

func checkIcon(status string) string {
	switch status {
	case "success":
		return "✅"
	case "failure":
		return "❌"
	case "neutral":
		return "⚪"
	case "cancelled":
		return "⛔"
	case "timed_out":
		return "⏱️"
	case "in_progress":
		return "🔄"
	case "queued":
		return "⏳"
	default:
		return "❓"
	}
}
