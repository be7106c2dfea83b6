// Package github fetches project READMEs from the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultAPIURL = "https://api.github.com"
	maxReadmeSize = 1 << 20
)

var (
	// ErrInvalidURL is returned for URLs that do not name a repository.
	ErrInvalidURL = errors.New("invalid GitHub URL format")
	// ErrReadmeNotFound is returned when the repository has no README.
	ErrReadmeNotFound = errors.New("README not found in this repository")
)

var repoPath = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/?#]+)`)

// ReadmeClient downloads raw README Markdown.
type ReadmeClient struct {
	http   *http.Client
	apiURL string
}

// NewReadmeClient builds a client from cfg. A configured token is sent as a
// bearer token, which raises the API rate limit.
func NewReadmeClient(cfg config.GitHubConfig) *ReadmeClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
		client.Timeout = timeout
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &ReadmeClient{http: client, apiURL: apiURL}
}

// ParseRepo extracts owner and repository from a github.com URL. Both
// https://github.com/owner/repo and deeper paths such as /tree/main work.
func ParseRepo(repoURL string) (owner, repo string, err error) {
	m := repoPath.FindStringSubmatch(strings.TrimSpace(repoURL))
	if m == nil {
		return "", "", ErrInvalidURL
	}
	return m[1], strings.TrimSuffix(m[2], ".git"), nil
}

// FetchReadme returns the README of the repository at repoURL.
func (c *ReadmeClient) FetchReadme(ctx context.Context, repoURL string) (string, error) {
	owner, repo, err := ParseRepo(repoURL)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.apiURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build README request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.raw")
	req.Header.Set("User-Agent", "chakyiu-blog")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch README: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrReadmeNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("GitHub API error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadmeSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read README: %w", err)
	}
	if len(body) > maxReadmeSize {
		return "", fmt.Errorf("README larger than %d bytes", maxReadmeSize)
	}
	return string(body), nil
}
