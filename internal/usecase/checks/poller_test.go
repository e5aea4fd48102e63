package checks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
	"pr-reviewer/internal/usecase/checks"
)

type fakeHost struct {
	ListCheckRunsFunc func(ctx context.Context, ref string) ([]domain.TestResult, error)
	polls             int
}

func (f *fakeHost) ListCheckRuns(ctx context.Context, ref string) ([]domain.TestResult, error) {
	f.polls++
	return f.ListCheckRunsFunc(ctx, ref)
}

func testConfig(timeout, interval int) config.Config {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	cfg.TestCheck.Enabled = true
	cfg.TestCheck.Timeout = timeout
	cfg.TestCheck.PollInterval = interval
	return cfg
}

func newPoller(host checks.Host) *checks.Poller {
	p := checks.NewPoller(host, observability.Nop{})
	p.SetSleep(func(time.Duration) {})
	return p
}

func completed(name, conclusion string) domain.TestResult {
	return domain.TestResult{Name: name, Status: domain.CheckStatusCompleted, Conclusion: conclusion}
}

func running(name string) domain.TestResult {
	return domain.TestResult{Name: name, Status: domain.CheckStatusInProgress}
}

func TestWaitDisabledReturnsImmediately(t *testing.T) {
	host := &fakeHost{
		ListCheckRunsFunc: func(ctx context.Context, ref string) ([]domain.TestResult, error) {
			return nil, nil
		},
	}
	cfg := testConfig(60, 10)
	cfg.TestCheck.Enabled = false

	results := newPoller(host).Wait(context.Background(), "ai-fix/42", cfg)

	assert.Empty(t, results)
	assert.Zero(t, host.polls)
}

func TestWaitReturnsWhenAllCompleted(t *testing.T) {
	sets := [][]domain.TestResult{
		{running("unit-tests")},
		{completed("unit-tests", "success")},
	}
	host := &fakeHost{}
	host.ListCheckRunsFunc = func(ctx context.Context, ref string) ([]domain.TestResult, error) {
		return sets[host.polls-1], nil
	}

	results := newPoller(host).Wait(context.Background(), "ai-fix/42", testConfig(60, 10))

	require.Len(t, results, 1)
	assert.Equal(t, domain.CheckStatusCompleted, results[0].Status)
	assert.Equal(t, 2, host.polls)
}

func TestWaitEmptySetKeepsPolling(t *testing.T) {
	host := &fakeHost{}
	host.ListCheckRunsFunc = func(ctx context.Context, ref string) ([]domain.TestResult, error) {
		if host.polls < 3 {
			return nil, nil
		}
		return []domain.TestResult{completed("lint", "success")}, nil
	}

	results := newPoller(host).Wait(context.Background(), "ai-fix/42", testConfig(60, 10))

	require.Len(t, results, 1)
	assert.Equal(t, 3, host.polls, "empty sets are not completions")
}

func TestWaitTimesOutWithBoundedPolls(t *testing.T) {
	// Interval 10, timeout 60: at most 6 polls, last incomplete set
	// returned verbatim.
	host := &fakeHost{}
	host.ListCheckRunsFunc = func(ctx context.Context, ref string) ([]domain.TestResult, error) {
		return []domain.TestResult{running("slow-suite")}, nil
	}

	results := newPoller(host).Wait(context.Background(), "ai-fix/42", testConfig(60, 10))

	assert.Equal(t, 6, host.polls)
	require.Len(t, results, 1)
	assert.Equal(t, domain.CheckStatusInProgress, results[0].Status)
}

func TestWaitSleepsForConfiguredInterval(t *testing.T) {
	host := &fakeHost{}
	host.ListCheckRunsFunc = func(ctx context.Context, ref string) ([]domain.TestResult, error) {
		if host.polls < 2 {
			return []domain.TestResult{running("suite")}, nil
		}
		return []domain.TestResult{completed("suite", "success")}, nil
	}

	var slept []time.Duration
	p := checks.NewPoller(host, observability.Nop{})
	p.SetSleep(func(d time.Duration) { slept = append(slept, d) })

	p.Wait(context.Background(), "ai-fix/42", testConfig(60, 10))

	require.Len(t, slept, 1)
	assert.Equal(t, 10*time.Second, slept[0])
}

func TestWaitPollErrorKeepsGoing(t *testing.T) {
	host := &fakeHost{}
	host.ListCheckRunsFunc = func(ctx context.Context, ref string) ([]domain.TestResult, error) {
		if host.polls == 1 {
			return nil, errors.New("transient")
		}
		return []domain.TestResult{completed("suite", "success")}, nil
	}

	results := newPoller(host).Wait(context.Background(), "ai-fix/42", testConfig(60, 10))

	require.Len(t, results, 1)
	assert.Equal(t, 2, host.polls)
}

func TestResultsPassed(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.TestResult
		want    bool
	}{
		{"empty set passes", nil, true},
		{"all success", []domain.TestResult{completed("a", "success")}, true},
		{"neutral passes", []domain.TestResult{completed("a", "neutral")}, true},
		{"skipped passes", []domain.TestResult{completed("a", "skipped")}, true},
		{"success plus failure fails", []domain.TestResult{completed("a", "success"), completed("b", "failure")}, false},
		{"cancelled fails", []domain.TestResult{completed("a", "cancelled")}, false},
		{"timed_out fails", []domain.TestResult{completed("a", "timed_out")}, false},
		{"still running ignored", []domain.TestResult{running("a"), completed("b", "success")}, true},
		{"only running passes", []domain.TestResult{running("a")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checks.ResultsPassed(tt.results))
		})
	}
}
