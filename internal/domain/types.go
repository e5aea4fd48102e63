// Package domain holds the core data types shared by every pipeline stage.
package domain

// Severity classifies how serious a finding is. The order is fixed:
// critical > high > medium > low.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank maps each severity to its ordinal position, most severe first.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is at least as severe as min.
// With rank(critical)=0 and rank(low)=3 this is rank(s) <= rank(min), so a
// min of "medium" keeps critical, high and medium findings.
func (s Severity) AtLeast(min Severity) bool {
	sRank, ok := severityRank[s]
	if !ok {
		return false
	}
	minRank, ok := severityRank[min]
	if !ok {
		return false
	}
	return sRank <= minRank
}

// Category classifies the kind of issue a finding describes.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryCorrectness     Category = "correctness"
	CategoryStyle           Category = "style"
)

// Categories lists every known category in declaration order.
func Categories() []Category {
	return []Category{
		CategorySecurity,
		CategoryPerformance,
		CategoryMaintainability,
		CategoryCorrectness,
		CategoryStyle,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategoryPerformance, CategoryMaintainability,
		CategoryCorrectness, CategoryStyle:
		return true
	}
	return false
}

// File change statuses as reported by the hosting service.
const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusRemoved  = "removed"
	FileStatusRenamed  = "renamed"
)

// Finding is a single reviewer-identified issue in a file.
type Finding struct {
	File         string   `json:"file"`
	Line         int      `json:"line,omitempty"`
	Severity     Severity `json:"severity"`
	Category     Category `json:"category"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
}

// FileChange is one file modified in a pull request. Patch is empty for
// binary or otherwise unrepresentable changes. Content stays empty until the
// orchestrator loads it for files that survive filtering.
type FileChange struct {
	Filename  string
	Status    string
	Patch     string
	Additions int
	Deletions int
	Content   string
	SHA       string
}

// PRInfo is the pull request metadata fetched once per invocation.
type PRInfo struct {
	Number     int
	Title      string
	Body       string
	Author     string
	HeadBranch string
	BaseBranch string
	HeadSHA    string
	Labels     []string
	Files      []FileChange
}

// HasLabel reports whether the pull request carries the given label.
func (p PRInfo) HasLabel(name string) bool {
	for _, l := range p.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Check run statuses and conclusions as reported by the hosting service.
const (
	CheckStatusQueued     = "queued"
	CheckStatusInProgress = "in_progress"
	CheckStatusCompleted  = "completed"
)

// TestResult is a snapshot of one CI check run at poll time.
type TestResult struct {
	Name       string
	Status     string
	Conclusion string
}

// ReviewResult aggregates everything one invocation produced.
type ReviewResult struct {
	Findings    []Finding
	IssueURLs   []string
	FixPRURL    string
	TestResults []TestResult
}

// HasIssues reports whether the review produced any findings.
func (r ReviewResult) HasIssues() bool {
	return len(r.Findings) > 0
}

// CriticalCount returns the number of critical findings.
func (r ReviewResult) CriticalCount() int {
	count := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			count++
		}
	}
	return count
}
