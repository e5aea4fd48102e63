// Package checks polls CI check runs on a ref until they complete or a
// timeout elapses, and decides whether the final set passes.
package checks

import (
	"context"
	"time"

	"pr-reviewer/internal/config"
	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/observability"
)

// Host is the hosting collaborator operation this stage needs.
type Host interface {
	ListCheckRuns(ctx context.Context, ref string) ([]domain.TestResult, error)
}

// Poller waits for check runs with a fixed poll interval.
type Poller struct {
	host   Host
	logger observability.Logger
	sleep  func(time.Duration)
}

// NewPoller creates a Poller.
func NewPoller(host Host, logger observability.Logger) *Poller {
	return &Poller{host: host, logger: logger, sleep: time.Sleep}
}

// SetSleep replaces the inter-poll wait (for testing).
func (p *Poller) SetSleep(sleep func(time.Duration)) {
	p.sleep = sleep
}

// Wait polls check runs for ref until every run reports completed or the
// configured timeout elapses, returning the last-fetched result set either
// way. An empty poll result means the checks have not started yet and keeps
// the loop going. When polling is disabled, it returns immediately with no
// results and no polls.
func (p *Poller) Wait(ctx context.Context, ref string, cfg config.Config) []domain.TestResult {
	if !cfg.TestCheck.Enabled {
		return nil
	}

	interval := cfg.TestCheck.PollInterval
	timeout := cfg.TestCheck.Timeout

	var last []domain.TestResult
	for elapsed := 0; elapsed < timeout; elapsed += interval {
		results, err := p.host.ListCheckRuns(ctx, ref)
		if err != nil {
			p.logger.LogWarning(ctx, "failed to list check runs", map[string]interface{}{
				"ref":   ref,
				"error": err.Error(),
			})
			p.sleep(time.Duration(interval) * time.Second)
			continue
		}

		last = results
		if len(results) == 0 {
			// Checks have not been reported yet.
			p.logger.LogDebug(ctx, "no check runs yet", map[string]interface{}{"ref": ref})
			p.sleep(time.Duration(interval) * time.Second)
			continue
		}

		if allCompleted(results) {
			p.logger.LogInfo(ctx, "all check runs completed", map[string]interface{}{
				"ref":    ref,
				"checks": len(results),
			})
			return results
		}

		p.sleep(time.Duration(interval) * time.Second)
	}

	p.logger.LogWarning(ctx, "timed out waiting for check runs", map[string]interface{}{
		"ref":     ref,
		"timeout": timeout,
	})
	return last
}

func allCompleted(results []domain.TestResult) bool {
	for _, r := range results {
		if r.Status != domain.CheckStatusCompleted {
			return false
		}
	}
	return true
}

// ResultsPassed reports whether a result set counts as passing: an empty
// set passes, and every completed entry must conclude success, neutral, or
// skipped. Entries still running do not affect the outcome.
func ResultsPassed(results []domain.TestResult) bool {
	for _, r := range results {
		if r.Status != domain.CheckStatusCompleted {
			continue
		}
		switch r.Conclusion {
		case "success", "neutral", "skipped":
		default:
			return false
		}
	}
	return true
}
