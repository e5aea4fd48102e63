package issues_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
	"pr-reviewer/internal/usecase/issues"
)

type fakeHost struct {
	CreateIssueFunc func(ctx context.Context, title, body string, labels []string) (string, error)
	titles          []string
	bodies          []string
	labels          [][]string
}

func (f *fakeHost) CreateIssue(ctx context.Context, title, body string, labels []string) (string, error) {
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
	f.labels = append(f.labels, labels)
	return f.CreateIssueFunc(ctx, title, body, labels)
}

func testConfig() config.Config {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestCreateIssuesOnePerFinding(t *testing.T) {
	n := 0
	host := &fakeHost{
		CreateIssueFunc: func(ctx context.Context, title, body string, labels []string) (string, error) {
			n++
			return fmt.Sprintf("https://example.com/issues/%d", n), nil
		},
	}
	creator := issues.NewCreator(host, observability.Nop{})

	findings := []domain.Finding{
		{File: "a.go", Line: 3, Severity: domain.SeverityHigh, Category: domain.CategorySecurity, Title: "SQL injection", Description: "d", SuggestedFix: "use placeholders"},
		{File: "b.go", Severity: domain.SeverityLow, Category: domain.CategoryStyle, Title: "Unused var", Description: "d"},
	}
	pr := domain.PRInfo{Number: 42, Title: "Add feature"}

	urls := creator.CreateIssues(context.Background(), findings, pr, testConfig())

	require.Len(t, urls, 2)
	assert.Equal(t, "[HIGH] SQL injection (PR #42)", host.titles[0])
	assert.Equal(t, "[LOW] Unused var (PR #42)", host.titles[1])
	assert.Equal(t, []string{"ai-review", "automated"}, host.labels[0])

	assert.Contains(t, host.bodies[0], "**Source PR:** #42 (Add feature)")
	assert.Contains(t, host.bodies[0], "**File:** `a.go`")
	assert.Contains(t, host.bodies[0], "**Line:** 3")
	assert.Contains(t, host.bodies[0], "## Suggested Fix")
	assert.NotContains(t, host.bodies[1], "**Line:**")
	assert.NotContains(t, host.bodies[1], "## Suggested Fix")
}

func TestCreateIssuesSkipsFailures(t *testing.T) {
	host := &fakeHost{
		CreateIssueFunc: func(ctx context.Context, title, body string, labels []string) (string, error) {
			if len(labels) > 0 && title == "[HIGH] flaky (PR #1)" {
				return "", errors.New("rate limited")
			}
			return "https://example.com/issues/1", nil
		},
	}
	creator := issues.NewCreator(host, observability.Nop{})

	findings := []domain.Finding{
		{File: "a.go", Severity: domain.SeverityHigh, Category: domain.CategorySecurity, Title: "flaky", Description: "d"},
		{File: "b.go", Severity: domain.SeverityHigh, Category: domain.CategorySecurity, Title: "stable", Description: "d"},
	}

	urls := creator.CreateIssues(context.Background(), findings, domain.PRInfo{Number: 1}, testConfig())

	assert.Len(t, urls, 1)
	assert.Len(t, host.titles, 2, "a failing issue must not stop the rest")
}

func TestCreateIssuesNoFindings(t *testing.T) {
	host := &fakeHost{
		CreateIssueFunc: func(ctx context.Context, title, body string, labels []string) (string, error) {
			t.Fatal("no issues should be created")
			return "", nil
		},
	}
	creator := issues.NewCreator(host, observability.Nop{})

	urls := creator.CreateIssues(context.Background(), nil, domain.PRInfo{}, testConfig())
	assert.Empty(t, urls)
}
