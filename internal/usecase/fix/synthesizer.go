// Package fix turns findings that carry a suggested fix into commits on a
// dedicated branch and one follow-up pull request against the branch under
// review.
package fix

import (
	"context"
	"fmt"
	"strings"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
)

// Host is the set of hosting collaborator operations this stage needs.
type Host interface {
	GetFileContent(ctx context.Context, path, ref string) (content, sha string, err error)
	CreateBranch(ctx context.Context, branch, sha string) error
	CommitFile(ctx context.Context, path, branch, content, message, sha string) error
	CreatePullRequest(ctx context.Context, title, body, head, base string, labels []string) (string, error)
}

// ModelClient is the model collaborator used for whole-file rewrites.
type ModelClient interface {
	Complete(ctx context.Context, system, prompt, model string, maxTokens int) (string, error)
}

// Synthesizer generates fix commits and the follow-up pull request.
type Synthesizer struct {
	host   Host
	model  ModelClient
	logger observability.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(host Host, model ModelClient, logger observability.Logger) *Synthesizer {
	return &Synthesizer{host: host, model: model, logger: logger}
}

// fileFixes groups the fixable findings of one file, preserving the
// first-seen order of distinct paths.
type fileFixes struct {
	path     string
	findings []domain.Finding
}

// GenerateFixPR commits model-generated corrections for fixable findings to
// a new branch and opens a pull request targeting the reviewed PR's head
// branch. Returns the fix PR URL, or an empty string when nothing was
// produced. Per-file failures are skipped; only branch creation is a hard
// precondition.
func (s *Synthesizer) GenerateFixPR(ctx context.Context, findings []domain.Finding, pr domain.PRInfo, cfg config.Config) string {
	groups := groupFixable(findings)
	if len(groups) == 0 {
		s.logger.LogInfo(ctx, "no fixable findings, skipping fix generation", nil)
		return ""
	}

	if len(groups) > cfg.Fix.MaxFilesPerPR {
		groups = groups[:cfg.Fix.MaxFilesPerPR]
	}

	fixBranch := cfg.FixBranch(pr.Number)
	if err := s.host.CreateBranch(ctx, fixBranch, pr.HeadSHA); err != nil {
		s.logger.LogError(ctx, "failed to create fix branch", map[string]interface{}{
			"branch": fixBranch,
			"error":  err.Error(),
		})
		return ""
	}

	// Commits are strictly sequential: each file's baseline content and
	// blob SHA are read after the previous commit landed, so the branch tip
	// never races with itself.
	committedAny := false
	for _, group := range groups {
		if s.fixAndCommitFile(ctx, group, fixBranch, cfg) {
			committedAny = true
		}
	}

	if !committedAny {
		s.logger.LogWarning(ctx, "no fixes were committed, skipping fix PR", map[string]interface{}{
			"branch": fixBranch,
		})
		return ""
	}

	title := fmt.Sprintf("AI Fix: Address review findings for PR #%d", pr.Number)
	body := buildFixPRBody(pr, groups)
	labels := []string{cfg.Labels.Fix, cfg.Labels.Automated}

	// The fix targets the branch under review, not the repository's trunk.
	url, err := s.host.CreatePullRequest(ctx, title, body, fixBranch, pr.HeadBranch, labels)
	if err != nil {
		s.logger.LogError(ctx, "failed to create fix PR", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return url
}

// fixAndCommitFile rewrites one file via the model and commits the result.
// Returns true when the commit succeeded.
func (s *Synthesizer) fixAndCommitFile(ctx context.Context, group fileFixes, fixBranch string, cfg config.Config) bool {
	content, sha, err := s.host.GetFileContent(ctx, group.path, fixBranch)
	if err != nil {
		s.logger.LogWarning(ctx, "could not read file from fix branch", map[string]interface{}{
			"file":   group.path,
			"branch": fixBranch,
			"error":  err.Error(),
		})
		return false
	}

	digest := findingsDigest(group.findings)
	response, err := s.model.Complete(ctx, "", buildFixPrompt(group.path, content, digest), cfg.Claude.Model, cfg.Claude.MaxTokens)
	if err != nil {
		s.logger.LogError(ctx, "model fix generation failed", map[string]interface{}{
			"file":  group.path,
			"error": err.Error(),
		})
		return false
	}

	fixed, ok := extractFixedContent(response)
	if !ok {
		s.logger.LogWarning(ctx, "could not extract fixed content", map[string]interface{}{
			"file": group.path,
		})
		return false
	}

	message := fmt.Sprintf("fix: address AI review findings in %s\n\nFindings addressed:\n%s", group.path, digest)
	if err := s.host.CommitFile(ctx, group.path, fixBranch, fixed, message, sha); err != nil {
		s.logger.LogError(ctx, "failed to commit fix", map[string]interface{}{
			"file":   group.path,
			"branch": fixBranch,
			"error":  err.Error(),
		})
		return false
	}
	return true
}

// groupFixable collects findings carrying a suggested fix, grouped by file
// in first-seen order.
func groupFixable(findings []domain.Finding) []fileFixes {
	index := make(map[string]int)
	var groups []fileFixes
	for _, f := range findings {
		if f.SuggestedFix == "" {
			continue
		}
		i, seen := index[f.File]
		if !seen {
			i = len(groups)
			index[f.File] = i
			groups = append(groups, fileFixes{path: f.File})
		}
		groups[i].findings = append(groups[i].findings, f)
	}
	return groups
}

// findingsDigest renders a file's findings for the fix prompt and commit
// message.
func findingsDigest(findings []domain.Finding) string {
	var lines []string
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s\n  Suggested: %s", f.Severity, f.Title, f.Description, f.SuggestedFix))
	}
	return strings.Join(lines, "\n")
}

func buildFixPRBody(pr domain.PRInfo, groups []fileFixes) string {
	lines := []string{
		"## AI-Generated Fix PR",
		"",
		fmt.Sprintf("This PR addresses review findings from PR #%d.", pr.Number),
		"",
		"### Files Modified",
		"",
	}

	for _, group := range groups {
		lines = append(lines, fmt.Sprintf("#### `%s`", group.path))
		for _, f := range group.findings {
			lines = append(lines, fmt.Sprintf("- **[%s]** %s", f.Severity, f.Title))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"---",
		"*This PR was automatically generated by AI PR Reviewer.*",
	)

	return strings.Join(lines, "\n")
}
