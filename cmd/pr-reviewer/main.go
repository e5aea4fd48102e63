package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pr-reviewer/internal/adapter/cli"
	githubadapter "pr-reviewer/internal/adapter/github"
	"pr-reviewer/internal/adapter/llm/anthropic"
	"pr-reviewer/internal/observability"
	"pr-reviewer/internal/usecase/checks"
	"pr-reviewer/internal/usecase/comment"
	"pr-reviewer/internal/usecase/fix"
	"pr-reviewer/internal/usecase/issues"
	"pr-reviewer/internal/usecase/pipeline"
	"pr-reviewer/internal/usecase/review"
	"pr-reviewer/internal/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := observability.NewFromEnv()

	deps := cli.Dependencies{
		Run: func(ctx context.Context, owner, repo string, prNumber int, githubToken, anthropicKey string) error {
			host := githubadapter.NewClient(githubToken, owner, repo)
			model := anthropic.NewClient(anthropicKey)

			orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
				Host:     host,
				Reviewer: review.NewReviewer(model, logger),
				Issues:   issues.NewCreator(host, logger),
				Fixer:    fix.NewSynthesizer(host, model, logger),
				Checks:   checks.NewPoller(host, logger),
				Summary:  comment.NewCommenter(host, logger),
				Logger:   logger,
			})
			return orchestrator.Run(ctx, prNumber)
		},
		Version: version.Version(),
	}

	return cli.NewRootCommand(deps).ExecuteContext(ctx)
}
