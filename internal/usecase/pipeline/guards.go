package pipeline

import (
	"fmt"
	"strings"

	"pr-reviewer/internal/domain"
)

// Loop-prevention guards. These run before configuration is loaded, so the
// markers are fixed rather than configurable: a fix PR produced by this tool
// must never be reviewed by it again.
var botActors = []string{"[bot]", "github-actions", "dependabot"}

const (
	fixBranchPrefix = "ai-fix/"
	fixLabel        = "ai-fix"
)

// skipReason returns a human-readable reason to skip the PR, or ok=false to
// proceed. Skipping counts as a successful run.
func skipReason(pr domain.PRInfo) (string, bool) {
	author := strings.ToLower(pr.Author)
	for _, bot := range botActors {
		if strings.Contains(author, bot) {
			return fmt.Sprintf("author %q is a bot", pr.Author), true
		}
	}

	if strings.HasPrefix(pr.HeadBranch, fixBranchPrefix) {
		return fmt.Sprintf("head branch %q is an AI fix branch", pr.HeadBranch), true
	}

	if pr.HasLabel(fixLabel) {
		return fmt.Sprintf("PR has the %q label", fixLabel), true
	}

	return "", false
}
