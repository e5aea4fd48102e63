// Package cli wires the review pipeline to its command-line surface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// RunFunc executes the pipeline for one pull request. Credentials are
// already resolved when it is called.
type RunFunc func(ctx context.Context, owner, repo string, prNumber int, githubToken, anthropicKey string) error

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Run     RunFunc
	Args    Arguments
	Getenv  func(string) string
	Version string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}
	getenv := deps.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var (
		repoFlag     string
		prNumber     int
		githubToken  string
		anthropicKey string
		showVersion  bool
	)

	root := &cobra.Command{
		Use:   "pr-reviewer",
		Short: "AI-assisted pull request review and remediation",
		Long: "pr-reviewer reviews a pull request with an AI model, files issues for its findings,\n" +
			"optionally commits automated fixes to a follow-up PR, and posts a summary comment.",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.Flags().StringVar(&repoFlag, "repo", "", "Repository in owner/repo form (required)")
	root.Flags().IntVar(&prNumber, "pr", 0, "Pull request number to review (required)")
	root.Flags().StringVar(&githubToken, "github-token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	root.Flags().StringVar(&anthropicKey, "anthropic-key", "", "Anthropic API key (defaults to ANTHROPIC_API_KEY)")
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}

		owner, repo, err := splitRepo(repoFlag)
		if err != nil {
			return err
		}
		if prNumber <= 0 {
			return fmt.Errorf("--pr must be a positive pull request number")
		}

		token := githubToken
		if token == "" {
			token = getenv("GITHUB_TOKEN")
		}
		if token == "" {
			return fmt.Errorf("GitHub token not provided (set GITHUB_TOKEN or --github-token)")
		}

		key := anthropicKey
		if key == "" {
			key = getenv("ANTHROPIC_API_KEY")
		}
		if key == "" {
			return fmt.Errorf("Anthropic API key not provided (set ANTHROPIC_API_KEY or --anthropic-key)")
		}

		return deps.Run(cmd.Context(), owner, repo, prNumber, token, key)
	}

	return root
}

func splitRepo(full string) (string, string, error) {
	parts := strings.Split(full, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("--repo must be in owner/repo form, got %q", full)
	}
	return parts[0], parts[1], nil
}
