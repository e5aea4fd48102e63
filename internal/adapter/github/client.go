// Package github implements the hosting-provider adapter against the GitHub
// REST API: pull request metadata, file contents, branches, commits, issues,
// pull requests, comments, and check runs.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pr-reviewer/internal/domain"
	"pr-reviewer/internal/transport"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	// configFileName is the per-repository review configuration file read
	// from the pull request's head branch.
	configFileName = ".ai-reviewer.yml"

	filesPerPage = 100
)

// Client is an HTTP client for the GitHub REST API, bound to one repository.
type Client struct {
	token      string
	owner      string
	repo       string
	baseURL    string
	httpClient *http.Client
	retryConf  transport.RetryConfig
}

// NewClient creates a GitHub API client for owner/repo authenticated with
// token. The token should be a personal access token or GITHUB_TOKEN from
// Actions.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		token:      token,
		owner:      owner,
		repo:       repo,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  transport.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetRetryConfig overrides the default retry policy.
func (c *Client) SetRetryConfig(conf transport.RetryConfig) {
	c.retryConf = conf
}

// GetPullRequest fetches pull request metadata along with its full changed
// file list.
func (c *Client) GetPullRequest(ctx context.Context, number int) (domain.PRInfo, error) {
	var prResp pullRequestResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/pulls/%d", number), nil, &prResp); err != nil {
		return domain.PRInfo{}, fmt.Errorf("fetching pull request %d: %w", number, err)
	}

	files, err := c.listFiles(ctx, number)
	if err != nil {
		return domain.PRInfo{}, fmt.Errorf("fetching files for pull request %d: %w", number, err)
	}

	return mapPullRequest(prResp, files), nil
}

// listFiles pages through the changed files of a pull request.
func (c *Client) listFiles(ctx context.Context, number int) ([]fileResponse, error) {
	var all []fileResponse
	for page := 1; ; page++ {
		path := fmt.Sprintf("/pulls/%d/files?per_page=%d&page=%d", number, filesPerPage, page)
		var batch []fileResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < filesPerPage {
			return all, nil
		}
	}
}

// GetRepoConfig reads the repository's review configuration file from the
// given ref. A missing file is not an error; it returns an empty string.
func (c *Client) GetRepoConfig(ctx context.Context, ref string) (string, error) {
	content, _, err := c.GetFileContent(ctx, configFileName, ref)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// GetFileContent fetches a file's decoded content and blob SHA at the given
// ref. Returns ErrNotFound if the file does not exist there.
func (c *Client) GetFileContent(ctx context.Context, path, ref string) (string, string, error) {
	reqPath := fmt.Sprintf("/contents/%s?ref=%s", escapePath(path), url.QueryEscape(ref))
	var resp contentResponse
	if err := c.do(ctx, http.MethodGet, reqPath, nil, &resp); err != nil {
		return "", "", err
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", "", fmt.Errorf("decoding content of %s: %w", path, err)
	}
	return string(decoded), resp.SHA, nil
}

// CreateBranch creates a new branch pointing at sha.
func (c *Client) CreateBranch(ctx context.Context, branch, sha string) error {
	req := createRefRequest{Ref: "refs/heads/" + branch, SHA: sha}
	if err := c.do(ctx, http.MethodPost, "/git/refs", req, nil); err != nil {
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return nil
}

// CommitFile writes content to path on branch with the given commit message.
// sha is the current blob SHA when updating an existing file; empty for a
// new file.
func (c *Client) CommitFile(ctx context.Context, path, branch, content, message, sha string) error {
	req := commitFileRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  branch,
		SHA:     sha,
	}
	if err := c.do(ctx, http.MethodPut, "/contents/"+escapePath(path), req, nil); err != nil {
		return fmt.Errorf("committing %s to %s: %w", path, branch, err)
	}
	return nil
}

// CreateIssue opens an issue and returns its URL.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (string, error) {
	req := createIssueRequest{Title: title, Body: body, Labels: labels}
	var resp issueResponse
	if err := c.do(ctx, http.MethodPost, "/issues", req, &resp); err != nil {
		return "", fmt.Errorf("creating issue: %w", err)
	}
	return resp.HTMLURL, nil
}

// CreatePullRequest opens a pull request from head into base, applies
// labels, and returns its URL. Labels go through the issues endpoint since
// pull request creation does not accept them.
func (c *Client) CreatePullRequest(ctx context.Context, title, body, head, base string, labels []string) (string, error) {
	req := createPullRequest{Title: title, Body: body, Head: head, Base: base}
	var resp issueResponse
	if err := c.do(ctx, http.MethodPost, "/pulls", req, &resp); err != nil {
		return "", fmt.Errorf("creating pull request: %w", err)
	}

	if len(labels) > 0 {
		path := fmt.Sprintf("/issues/%d/labels", resp.Number)
		if err := c.do(ctx, http.MethodPost, path, addLabelsRequest{Labels: labels}, nil); err != nil {
			return "", fmt.Errorf("labeling pull request %d: %w", resp.Number, err)
		}
	}

	return resp.HTMLURL, nil
}

// CreateComment posts a comment on the issue or pull request with the given
// number.
func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	path := fmt.Sprintf("/issues/%d/comments", number)
	if err := c.do(ctx, http.MethodPost, path, createCommentRequest{Body: body}, nil); err != nil {
		return fmt.Errorf("commenting on #%d: %w", number, err)
	}
	return nil
}

// ListCheckRuns fetches the check runs for a ref.
func (c *Client) ListCheckRuns(ctx context.Context, ref string) ([]domain.TestResult, error) {
	path := fmt.Sprintf("/commits/%s/check-runs", url.PathEscape(ref))
	var resp checkRunsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing check runs for %s: %w", ref, err)
	}
	return mapCheckRuns(resp.CheckRuns), nil
}

// do executes one API call with retry. path is relative to the repository
// root ("/pulls/1"); body is JSON-marshaled when non-nil and the response is
// decoded into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	reqURL := fmt.Sprintf("%s/repos/%s/%s%s", c.baseURL, c.owner, c.repo, path)

	var respBody []byte
	err := transport.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, reqErr := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if reqErr != nil {
			return &transport.Error{
				Type:    transport.ErrTypeUnknown,
				Message: reqErr.Error(),
				Service: serviceName,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			return transport.NewTimeoutError(serviceName, callErr.Error())
		}
		defer resp.Body.Close()

		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &transport.Error{
				Type:       transport.ErrTypeUnknown,
				Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
				StatusCode: resp.StatusCode,
				Retryable:  resp.StatusCode >= 500,
				Service:    serviceName,
			}
		}

		if resp.StatusCode >= 400 {
			return mapError(resp.StatusCode, bodyBytes)
		}

		respBody = bodyBytes
		return nil
	}, c.retryConf)

	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// escapePath URL-escapes each segment of a repository file path while
// keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
