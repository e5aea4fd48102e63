// Package diff selects reviewable file changes and extracts changed line
// ranges from unified-diff patches.
package diff

import (
	"path/filepath"
	"strings"

	"pr-reviewer/internal/domain"
)

// FilterFiles returns the ordered subset of pr.Files eligible for review.
// Removed files, files matching an exclusion pattern, and files without
// patch text (binary changes) are dropped.
func FilterFiles(pr domain.PRInfo, excludePatterns []string) []domain.FileChange {
	reviewable := make([]domain.FileChange, 0, len(pr.Files))
	for _, fc := range pr.Files {
		if fc.Status == domain.FileStatusRemoved {
			continue
		}
		if IsExcluded(fc.Filename, excludePatterns) {
			continue
		}
		if fc.Patch == "" {
			continue
		}
		reviewable = append(reviewable, fc)
	}
	return reviewable
}

// IsExcluded reports whether path matches any exclusion pattern. Patterns
// use shell-glob semantics. A pattern containing a path separator is matched
// against the full path; otherwise it matches either the basename or the
// full path.
func IsExcluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(pattern, "/") {
			if matched, _ := filepath.Match(pattern, path); matched {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
