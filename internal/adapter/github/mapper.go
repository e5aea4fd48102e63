package github

import "pr-reviewer/internal/domain"

// mapPullRequest converts API responses into the domain PR description.
func mapPullRequest(pr pullRequestResponse, files []fileResponse) domain.PRInfo {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.Name)
	}

	changes := make([]domain.FileChange, 0, len(files))
	for _, f := range files {
		changes = append(changes, domain.FileChange{
			Filename:  f.Filename,
			Status:    f.Status,
			Patch:     f.Patch,
			Additions: f.Additions,
			Deletions: f.Deletions,
		})
	}

	return domain.PRInfo{
		Number:     pr.Number,
		Title:      pr.Title,
		Body:       pr.Body,
		Author:     pr.User.Login,
		HeadBranch: pr.Head.Ref,
		BaseBranch: pr.Base.Ref,
		HeadSHA:    pr.Head.SHA,
		Labels:     labels,
		Files:      changes,
	}
}

// mapCheckRuns converts API check runs into domain test results.
func mapCheckRuns(runs []checkRun) []domain.TestResult {
	results := make([]domain.TestResult, 0, len(runs))
	for _, r := range runs {
		results = append(results, domain.TestResult{
			Name:       r.Name,
			Status:     r.Status,
			Conclusion: r.Conclusion,
		})
	}
	return results
}
