// Package config loads the review configuration from its three layers:
// coded defaults, the repository's .ai-reviewer.yml, and environment
// variable overrides.
package config

import (
	"fmt"

	"pr-reviewer/internal/domain"
)

// Config is the validated review configuration consumed by every stage.
type Config struct {
	Review          ReviewLimits    `mapstructure:"review"`
	ExcludePatterns []string        `mapstructure:"exclude_patterns"`
	Categories      []string        `mapstructure:"categories"`
	Labels          Labels          `mapstructure:"labels"`
	Fix             FixConfig       `mapstructure:"fix"`
	TestCheck       TestCheckConfig `mapstructure:"test_check"`
	Claude          ClaudeConfig    `mapstructure:"claude"`
}

// ReviewLimits bounds what the finding aggregator reports.
type ReviewLimits struct {
	MinSeverity        string `mapstructure:"min_severity"`
	MaxFindingsPerFile int    `mapstructure:"max_findings_per_file"`
	MaxTotalFindings   int    `mapstructure:"max_total_findings"`
}

// Labels names the labels applied to created issues and pull requests.
type Labels struct {
	Review    string `mapstructure:"review"`
	Automated string `mapstructure:"automated"`
	Fix       string `mapstructure:"fix"`
}

// FixConfig configures automated fix generation.
type FixConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BranchPrefix  string `mapstructure:"branch_prefix"`
	MaxFilesPerPR int    `mapstructure:"max_files_per_pr"`
}

// TestCheckConfig configures CI check polling on the fix PR.
// Timeout and PollInterval are in seconds.
type TestCheckConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	Timeout      int  `mapstructure:"timeout"`
	PollInterval int  `mapstructure:"poll_interval"`
}

// ClaudeConfig selects the model and its response token budget.
type ClaudeConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// MinSeverity returns the configured minimum severity as a domain value.
func (c Config) MinSeverity() domain.Severity {
	return domain.Severity(c.Review.MinSeverity)
}

// FixBranch returns the fix branch name for a pull request number.
func (c Config) FixBranch(prNumber int) string {
	return fmt.Sprintf("%s%d", c.Fix.BranchPrefix, prNumber)
}

// Validate checks enum values and limits after the layered merge.
func (c Config) Validate() error {
	if !domain.Severity(c.Review.MinSeverity).Valid() {
		return fmt.Errorf("invalid min_severity %q", c.Review.MinSeverity)
	}
	for _, cat := range c.Categories {
		if !domain.Category(cat).Valid() {
			return fmt.Errorf("invalid category %q", cat)
		}
	}
	if c.Review.MaxFindingsPerFile <= 0 {
		return fmt.Errorf("max_findings_per_file must be positive, got %d", c.Review.MaxFindingsPerFile)
	}
	if c.Review.MaxTotalFindings <= 0 {
		return fmt.Errorf("max_total_findings must be positive, got %d", c.Review.MaxTotalFindings)
	}
	if c.Fix.MaxFilesPerPR <= 0 {
		return fmt.Errorf("fix.max_files_per_pr must be positive, got %d", c.Fix.MaxFilesPerPR)
	}
	if c.Fix.BranchPrefix == "" {
		return fmt.Errorf("fix.branch_prefix must not be empty")
	}
	if c.TestCheck.Timeout <= 0 {
		return fmt.Errorf("test_check.timeout must be positive, got %d", c.TestCheck.Timeout)
	}
	if c.TestCheck.PollInterval <= 0 {
		return fmt.Errorf("test_check.poll_interval must be positive, got %d", c.TestCheck.PollInterval)
	}
	if c.Claude.Model == "" {
		return fmt.Errorf("claude.model must not be empty")
	}
	if c.Claude.MaxTokens <= 0 {
		return fmt.Errorf("claude.max_tokens must be positive, got %d", c.Claude.MaxTokens)
	}
	return nil
}

// DomainCategories returns the configured categories as domain values.
func (c Config) DomainCategories() []domain.Category {
	cats := make([]domain.Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		cats = append(cats, domain.Category(cat))
	}
	return cats
}
