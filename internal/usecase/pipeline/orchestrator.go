// Package pipeline sequences the review stages for one pull request: fetch,
// loop-prevention guards, config load, diff filtering, model review, issue
// creation, fix synthesis, check polling, and the summary comment.
package pipeline

import (
	"context"
	"fmt"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/diff"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
	"pr-reviewer/internal/usecase/checks"
)

// Host is the subset of hosting collaborator operations the orchestrator
// itself performs; stages bring their own.
type Host interface {
	GetPullRequest(ctx context.Context, number int) (domain.PRInfo, error)
	GetRepoConfig(ctx context.Context, ref string) (string, error)
	GetFileContent(ctx context.Context, path, ref string) (content, sha string, err error)
}

// FileReviewer runs the model review stage.
type FileReviewer interface {
	Review(ctx context.Context, pr domain.PRInfo, files []domain.FileChange, cfg config.Config) []domain.Finding
}

// IssueCreator files tracking issues for findings.
type IssueCreator interface {
	CreateIssues(ctx context.Context, findings []domain.Finding, pr domain.PRInfo, cfg config.Config) []string
}

// FixGenerator produces the fix branch and follow-up PR.
type FixGenerator interface {
	GenerateFixPR(ctx context.Context, findings []domain.Finding, pr domain.PRInfo, cfg config.Config) string
}

// CheckWaiter polls check runs on a ref.
type CheckWaiter interface {
	Wait(ctx context.Context, ref string, cfg config.Config) []domain.TestResult
}

// SummaryPoster posts the end-of-run comment.
type SummaryPoster interface {
	PostSummary(ctx context.Context, prNumber int, result domain.ReviewResult) error
}

// Deps holds the orchestrator's collaborators.
type Deps struct {
	Host       Host
	Reviewer   FileReviewer
	Issues     IssueCreator
	Fixer      FixGenerator
	Checks     CheckWaiter
	Summary    SummaryPoster
	LoadConfig func(repoYAML string) (config.Config, error)
	Logger     observability.Logger
}

// Orchestrator runs the pipeline.
type Orchestrator struct {
	deps Deps
}

// NewOrchestrator creates an Orchestrator. LoadConfig defaults to the
// layered config loader.
func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.LoadConfig == nil {
		deps.LoadConfig = config.Load
	}
	return &Orchestrator{deps: deps}
}

// Run reviews one pull request end to end. Failures in downstream stages
// degrade to fewer results; the summary comment is posted regardless of what
// was accomplished. Only metadata fetch and configuration failures abort.
func (o *Orchestrator) Run(ctx context.Context, prNumber int) error {
	d := o.deps

	d.Logger.LogInfo(ctx, "fetching pull request", map[string]interface{}{"pr": prNumber})
	pr, err := d.Host.GetPullRequest(ctx, prNumber)
	if err != nil {
		return fmt.Errorf("fetching pull request %d: %w", prNumber, err)
	}

	if reason, skip := skipReason(pr); skip {
		d.Logger.LogInfo(ctx, "skipping pull request", map[string]interface{}{
			"pr":     prNumber,
			"reason": reason,
		})
		return nil
	}

	repoYAML, err := d.Host.GetRepoConfig(ctx, pr.HeadBranch)
	if err != nil {
		return fmt.Errorf("reading repository config: %w", err)
	}
	cfg, err := d.LoadConfig(repoYAML)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	d.Logger.LogInfo(ctx, "config loaded", map[string]interface{}{
		"model":        cfg.Claude.Model,
		"min_severity": cfg.Review.MinSeverity,
	})

	files := diff.FilterFiles(pr, cfg.ExcludePatterns)
	if len(files) == 0 {
		d.Logger.LogInfo(ctx, "no reviewable files, posting approval", map[string]interface{}{"pr": prNumber})
		o.postSummary(ctx, prNumber, domain.ReviewResult{})
		return nil
	}

	// Content is loaded only for files that survived filtering, so excluded
	// files never cost a fetch.
	o.loadContent(ctx, pr, files)

	d.Logger.LogInfo(ctx, "reviewing files", map[string]interface{}{"files": len(files)})
	result := domain.ReviewResult{
		Findings: d.Reviewer.Review(ctx, pr, files, cfg),
	}

	if len(result.Findings) > 0 {
		result.IssueURLs = d.Issues.CreateIssues(ctx, result.Findings, pr, cfg)
	}

	if len(result.Findings) > 0 && cfg.Fix.Enabled {
		result.FixPRURL = d.Fixer.GenerateFixPR(ctx, result.Findings, pr, cfg)
	}

	if result.FixPRURL != "" && cfg.TestCheck.Enabled {
		fixBranch := cfg.FixBranch(pr.Number)
		d.Logger.LogInfo(ctx, "waiting for CI checks", map[string]interface{}{"branch": fixBranch})
		result.TestResults = d.Checks.Wait(ctx, fixBranch, cfg)

		if !checks.ResultsPassed(result.TestResults) {
			d.Logger.LogWarning(ctx, "some CI checks failed on the fix PR", map[string]interface{}{
				"branch": fixBranch,
			})
		}
	}

	o.postSummary(ctx, prNumber, result)

	d.Logger.LogInfo(ctx, "review complete", map[string]interface{}{
		"findings": len(result.Findings),
		"issues":   len(result.IssueURLs),
		"fix_pr":   result.FixPRURL,
	})
	return nil
}

// loadContent populates file content at the PR's head revision. A failed
// read leaves that file's content empty; the review still runs on the patch.
func (o *Orchestrator) loadContent(ctx context.Context, pr domain.PRInfo, files []domain.FileChange) {
	for i := range files {
		content, sha, err := o.deps.Host.GetFileContent(ctx, files[i].Filename, pr.HeadSHA)
		if err != nil {
			o.deps.Logger.LogWarning(ctx, "could not load file content", map[string]interface{}{
				"file":  files[i].Filename,
				"error": err.Error(),
			})
			continue
		}
		files[i].Content = content
		files[i].SHA = sha
	}
}

func (o *Orchestrator) postSummary(ctx context.Context, prNumber int, result domain.ReviewResult) {
	if err := o.deps.Summary.PostSummary(ctx, prNumber, result); err != nil {
		o.deps.Logger.LogError(ctx, "failed to post summary", map[string]interface{}{
			"pr":    prNumber,
			"error": err.Error(),
		})
	}
}
