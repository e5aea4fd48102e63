// Package review turns each reviewable file into structured findings via
// the model collaborator, enforcing per-file and total caps and a minimum
// severity.
package review

import (
	"context"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
)

// ModelClient is the model collaborator used to critique files.
type ModelClient interface {
	Complete(ctx context.Context, system, prompt, model string, maxTokens int) (string, error)
}

// Reviewer runs the model review stage over a filtered file list.
type Reviewer struct {
	model  ModelClient
	logger observability.Logger
}

// NewReviewer creates a Reviewer.
func NewReviewer(model ModelClient, logger observability.Logger) *Reviewer {
	return &Reviewer{model: model, logger: logger}
}

// Review sends each file to the model in input order and returns the
// severity-filtered findings. Iteration stops once the running unfiltered
// total reaches cfg.Review.MaxTotalFindings; files past that point are not
// reviewed at all, which bounds cost deterministically. A model failure on
// one file yields zero findings for that file and does not abort the rest.
func (r *Reviewer) Review(ctx context.Context, pr domain.PRInfo, files []domain.FileChange, cfg config.Config) []domain.Finding {
	var all []domain.Finding

	for _, fc := range files {
		if len(all) >= cfg.Review.MaxTotalFindings {
			r.logger.LogWarning(ctx, "reached max total findings, stopping review", map[string]interface{}{
				"max_total_findings": cfg.Review.MaxTotalFindings,
			})
			break
		}
		all = append(all, r.reviewFile(ctx, pr, fc, cfg)...)
	}

	filtered := filterBySeverity(all, cfg.MinSeverity())
	r.logger.LogInfo(ctx, "review complete", map[string]interface{}{
		"findings": len(filtered),
	})
	return filtered
}

// reviewFile runs one model call for one file.
func (r *Reviewer) reviewFile(ctx context.Context, pr domain.PRInfo, fc domain.FileChange, cfg config.Config) []domain.Finding {
	r.logger.LogDebug(ctx, "reviewing file", map[string]interface{}{"file": fc.Filename})

	prompt := buildFilePrompt(pr, fc, cfg.DomainCategories(), cfg.Review.MaxFindingsPerFile)
	response, err := r.model.Complete(ctx, systemPrompt, prompt, cfg.Claude.Model, cfg.Claude.MaxTokens)
	if err != nil {
		r.logger.LogError(ctx, "model review failed", map[string]interface{}{
			"file":  fc.Filename,
			"error": err.Error(),
		})
		return nil
	}

	findings := parseFindings(response, fc.Filename)
	if findings == nil {
		r.logger.LogWarning(ctx, "no findings parsed from model response", map[string]interface{}{
			"file": fc.Filename,
		})
	}
	return findings
}

// filterBySeverity keeps findings at least as severe as min.
func filterBySeverity(findings []domain.Finding, min domain.Severity) []domain.Finding {
	filtered := make([]domain.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.AtLeast(min) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
