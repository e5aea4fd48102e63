package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
	"pr-reviewer/internal/usecase/pipeline"
)

type fakeHost struct {
	GetPullRequestFunc func(ctx context.Context, number int) (domain.PRInfo, error)
	GetRepoConfigFunc  func(ctx context.Context, ref string) (string, error)
	GetFileContentFunc func(ctx context.Context, path, ref string) (string, string, error)

	contentReads []string
}

func (f *fakeHost) GetPullRequest(ctx context.Context, number int) (domain.PRInfo, error) {
	return f.GetPullRequestFunc(ctx, number)
}

func (f *fakeHost) GetRepoConfig(ctx context.Context, ref string) (string, error) {
	if f.GetRepoConfigFunc != nil {
		return f.GetRepoConfigFunc(ctx, ref)
	}
	return "", nil
}

func (f *fakeHost) GetFileContent(ctx context.Context, path, ref string) (string, string, error) {
	f.contentReads = append(f.contentReads, path)
	if f.GetFileContentFunc != nil {
		return f.GetFileContentFunc(ctx, path, ref)
	}
	return "content of " + path, "sha-" + path, nil
}

type fakeStages struct {
	reviewFindings []domain.Finding
	reviewedFiles  []domain.FileChange
	reviewCalled   bool

	issueURLs    []string
	issuesCalled bool

	fixURL    string
	fixCalled bool

	checkResults []domain.TestResult
	checksCalled bool
	checkedRef   string

	summaryResult *domain.ReviewResult
	summaryErr    error
}

func (f *fakeStages) Review(ctx context.Context, pr domain.PRInfo, files []domain.FileChange, cfg config.Config) []domain.Finding {
	f.reviewCalled = true
	f.reviewedFiles = files
	return f.reviewFindings
}

func (f *fakeStages) CreateIssues(ctx context.Context, findings []domain.Finding, pr domain.PRInfo, cfg config.Config) []string {
	f.issuesCalled = true
	return f.issueURLs
}

func (f *fakeStages) GenerateFixPR(ctx context.Context, findings []domain.Finding, pr domain.PRInfo, cfg config.Config) string {
	f.fixCalled = true
	return f.fixURL
}

func (f *fakeStages) Wait(ctx context.Context, ref string, cfg config.Config) []domain.TestResult {
	f.checksCalled = true
	f.checkedRef = ref
	return f.checkResults
}

func (f *fakeStages) PostSummary(ctx context.Context, prNumber int, result domain.ReviewResult) error {
	f.summaryResult = &result
	return f.summaryErr
}

func reviewablePR() domain.PRInfo {
	return domain.PRInfo{
		Number:     42,
		Title:      "Add limiter",
		Author:     "octocat",
		HeadBranch: "feature/limiter",
		BaseBranch: "main",
		HeadSHA:    "head-sha",
		Files: []domain.FileChange{
			{Filename: "limiter.go", Status: domain.FileStatusModified, Patch: "@@ -1 +1 @@\n+x"},
			{Filename: "gone.go", Status: domain.FileStatusRemoved, Patch: "@@ -1 +0,0 @@\n-y"},
		},
	}
}

func newOrchestrator(host *fakeHost, stages *fakeStages) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(pipeline.Deps{
		Host:     host,
		Reviewer: stages,
		Issues:   stages,
		Fixer:    stages,
		Checks:   stages,
		Summary:  stages,
		Logger:   observability.Nop{},
	})
}

func hostReturning(pr domain.PRInfo) *fakeHost {
	return &fakeHost{
		GetPullRequestFunc: func(ctx context.Context, number int) (domain.PRInfo, error) {
			return pr, nil
		},
	}
}

func TestRunGuards(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.PRInfo)
		skip   bool
	}{
		{"bot author", func(pr *domain.PRInfo) { pr.Author = "dependabot[bot]" }, true},
		{"github-actions author", func(pr *domain.PRInfo) { pr.Author = "github-actions" }, true},
		{"fix branch head", func(pr *domain.PRInfo) { pr.HeadBranch = "ai-fix/42" }, true},
		{"fix label", func(pr *domain.PRInfo) { pr.Labels = []string{"ai-fix"} }, true},
		{"clean PR proceeds", func(pr *domain.PRInfo) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := reviewablePR()
			tt.mutate(&pr)

			stages := &fakeStages{}
			err := newOrchestrator(hostReturning(pr), stages).Run(context.Background(), 42)

			require.NoError(t, err, "a guard skip is a successful run")
			assert.Equal(t, !tt.skip, stages.reviewCalled)
			if tt.skip {
				assert.Nil(t, stages.summaryResult, "skipped runs post no comment")
			}
		})
	}
}

func TestRunFullSequence(t *testing.T) {
	pr := reviewablePR()
	host := hostReturning(pr)
	host.GetRepoConfigFunc = func(ctx context.Context, ref string) (string, error) {
		assert.Equal(t, "feature/limiter", ref, "repo config comes from the head branch")
		return "fix:\n  enabled: true\ntest_check:\n  enabled: true\n", nil
	}

	stages := &fakeStages{
		reviewFindings: []domain.Finding{
			{File: "limiter.go", Severity: domain.SeverityHigh, Category: domain.CategorySecurity, Title: "t", Description: "d"},
		},
		issueURLs:    []string{"https://example.com/issues/1"},
		fixURL:       "https://example.com/pull/43",
		checkResults: []domain.TestResult{{Name: "ci", Status: domain.CheckStatusCompleted, Conclusion: "success"}},
	}

	err := newOrchestrator(host, stages).Run(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, stages.reviewCalled)
	assert.True(t, stages.issuesCalled)
	assert.True(t, stages.fixCalled)
	assert.True(t, stages.checksCalled)
	assert.Equal(t, "ai-fix/42", stages.checkedRef, "checks poll the fix branch")

	require.NotNil(t, stages.summaryResult)
	assert.Equal(t, stages.reviewFindings, stages.summaryResult.Findings)
	assert.Equal(t, stages.issueURLs, stages.summaryResult.IssueURLs)
	assert.Equal(t, "https://example.com/pull/43", stages.summaryResult.FixPRURL)
	assert.Equal(t, stages.checkResults, stages.summaryResult.TestResults)
}

func TestRunLoadsContentOnlyForFilteredFiles(t *testing.T) {
	pr := reviewablePR()
	stages := &fakeStages{}
	host := hostReturning(pr)

	require.NoError(t, newOrchestrator(host, stages).Run(context.Background(), 42))

	// The removed file is filtered out before any content fetch.
	assert.Equal(t, []string{"limiter.go"}, host.contentReads)
	require.Len(t, stages.reviewedFiles, 1)
	assert.Equal(t, "content of limiter.go", stages.reviewedFiles[0].Content)
	assert.Equal(t, "sha-limiter.go", stages.reviewedFiles[0].SHA)
}

func TestRunContentLoadFailureStillReviews(t *testing.T) {
	pr := reviewablePR()
	host := hostReturning(pr)
	host.GetFileContentFunc = func(ctx context.Context, path, ref string) (string, string, error) {
		return "", "", errors.New("boom")
	}
	stages := &fakeStages{}

	require.NoError(t, newOrchestrator(host, stages).Run(context.Background(), 42))

	require.Len(t, stages.reviewedFiles, 1)
	assert.Empty(t, stages.reviewedFiles[0].Content, "review proceeds on the patch alone")
}

func TestRunNoReviewableFilesPostsApproval(t *testing.T) {
	pr := reviewablePR()
	pr.Files = []domain.FileChange{{Filename: "gone.go", Status: domain.FileStatusRemoved, Patch: "p"}}
	stages := &fakeStages{}

	require.NoError(t, newOrchestrator(hostReturning(pr), stages).Run(context.Background(), 42))

	assert.False(t, stages.reviewCalled)
	require.NotNil(t, stages.summaryResult)
	assert.Empty(t, stages.summaryResult.Findings)
}

func TestRunNoFindingsSkipsIssuesAndFix(t *testing.T) {
	stages := &fakeStages{reviewFindings: nil}

	require.NoError(t, newOrchestrator(hostReturning(reviewablePR()), stages).Run(context.Background(), 42))

	assert.True(t, stages.reviewCalled)
	assert.False(t, stages.issuesCalled)
	assert.False(t, stages.fixCalled)
	assert.False(t, stages.checksCalled)
	require.NotNil(t, stages.summaryResult, "summary is posted even with nothing to report")
}

func TestRunFixDisabledSkipsSynthesis(t *testing.T) {
	host := hostReturning(reviewablePR())
	host.GetRepoConfigFunc = func(ctx context.Context, ref string) (string, error) {
		return "fix:\n  enabled: false\n", nil
	}
	stages := &fakeStages{
		reviewFindings: []domain.Finding{
			{File: "a.go", Severity: domain.SeverityHigh, Category: domain.CategorySecurity, Title: "t", Description: "d"},
		},
	}

	require.NoError(t, newOrchestrator(host, stages).Run(context.Background(), 42))

	assert.True(t, stages.issuesCalled)
	assert.False(t, stages.fixCalled)
}

func TestRunNoFixPRSkipsChecks(t *testing.T) {
	host := hostReturning(reviewablePR())
	host.GetRepoConfigFunc = func(ctx context.Context, ref string) (string, error) {
		return "fix:\n  enabled: true\ntest_check:\n  enabled: true\n", nil
	}
	stages := &fakeStages{
		reviewFindings: []domain.Finding{
			{File: "a.go", Severity: domain.SeverityHigh, Category: domain.CategorySecurity, Title: "t", Description: "d"},
		},
		fixURL: "",
	}

	require.NoError(t, newOrchestrator(host, stages).Run(context.Background(), 42))

	assert.True(t, stages.fixCalled)
	assert.False(t, stages.checksCalled)
}

func TestRunSummaryFailureDoesNotFailRun(t *testing.T) {
	stages := &fakeStages{summaryErr: errors.New("forbidden")}

	err := newOrchestrator(hostReturning(reviewablePR()), stages).Run(context.Background(), 42)
	assert.NoError(t, err)
}

func TestRunFetchFailureAborts(t *testing.T) {
	host := &fakeHost{
		GetPullRequestFunc: func(ctx context.Context, number int) (domain.PRInfo, error) {
			return domain.PRInfo{}, errors.New("not found")
		},
	}
	stages := &fakeStages{}

	err := newOrchestrator(host, stages).Run(context.Background(), 42)

	assert.Error(t, err)
	assert.False(t, stages.reviewCalled)
	assert.Nil(t, stages.summaryResult)
}

func TestRunInvalidRepoConfigAborts(t *testing.T) {
	host := hostReturning(reviewablePR())
	host.GetRepoConfigFunc = func(ctx context.Context, ref string) (string, error) {
		return "review:\n  min_severity: apocalyptic\n", nil
	}
	stages := &fakeStages{}

	err := newOrchestrator(host, stages).Run(context.Background(), 42)

	assert.Error(t, err)
	assert.False(t, stages.reviewCalled)
}
