package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "AI_REVIEWER"

// Load returns the merged configuration. repoYAML is the raw content of the
// repository's .ai-reviewer.yml (empty when the file does not exist); it
// overrides the coded defaults, and AI_REVIEWER_* environment variables
// override both.
func Load(repoYAML string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	if repoYAML != "" {
		if err := v.MergeConfig(strings.NewReader(repoYAML)); err != nil {
			return Config{}, fmt.Errorf("parse repo config: %w", err)
		}
	}

	bindEnvOverrides(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("review.min_severity", "low")
	v.SetDefault("review.max_findings_per_file", 10)
	v.SetDefault("review.max_total_findings", 50)

	v.SetDefault("exclude_patterns", []string{})
	v.SetDefault("categories", []string{
		"security", "performance", "maintainability", "correctness", "style",
	})

	v.SetDefault("labels.review", "ai-review")
	v.SetDefault("labels.automated", "automated")
	v.SetDefault("labels.fix", "ai-fix")

	v.SetDefault("fix.enabled", true)
	v.SetDefault("fix.branch_prefix", "ai-fix/")
	v.SetDefault("fix.max_files_per_pr", 10)

	v.SetDefault("test_check.enabled", true)
	v.SetDefault("test_check.timeout", 300)
	v.SetDefault("test_check.poll_interval", 30)

	v.SetDefault("claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("claude.max_tokens", 4096)
}

// bindEnvOverrides wires the supported AI_REVIEWER_* variables to their
// config keys. The variables are flat while the keys are nested, so each
// binding is explicit rather than derived from a key replacer.
func bindEnvOverrides(v *viper.Viper) {
	bindings := map[string]string{
		"review.min_severity":          "MIN_SEVERITY",
		"review.max_findings_per_file": "MAX_FINDINGS_PER_FILE",
		"review.max_total_findings":    "MAX_TOTAL_FINDINGS",
		"fix.enabled":                  "FIX_ENABLED",
		"fix.branch_prefix":            "FIX_BRANCH_PREFIX",
		"test_check.enabled":           "TEST_CHECK_ENABLED",
		"test_check.timeout":           "TEST_CHECK_TIMEOUT",
		"claude.model":                 "CLAUDE_MODEL",
		"claude.max_tokens":            "CLAUDE_MAX_TOKENS",
	}
	for key, suffix := range bindings {
		_ = v.BindEnv(key, envPrefix+"_"+suffix)
	}
}
