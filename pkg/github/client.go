/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package github wraps the GitHub API operations the deployment flow needs:
// current-user lookup, repository creation, contents writes, and Pages
// status polling. Authentication is a personal access token or a GitHub App
// installation.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v68/github"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client performs the deployment flow's GitHub operations.
type Client struct {
	gh *github.Client
}

// NewTokenClient builds a Client authenticated with a personal access token.
// An empty baseURL selects the public API.
func NewTokenClient(baseURL, token string) (*Client, error) {
	gh := github.NewClient(&http.Client{Timeout: 30 * time.Second}).WithAuthToken(token)
	if err := setBaseURL(gh, baseURL); err != nil {
		return nil, err
	}
	return &Client{gh: gh}, nil
}

// NewAppClient builds a Client authenticated as a GitHub App installation.
// Tokens are minted from the App private key and refreshed transparently.
func NewAppClient(baseURL string, appID, installationID int64, privateKeyPath string) (*Client, error) {
	itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if baseURL != "" {
		itr.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	gh := github.NewClient(&http.Client{Transport: itr, Timeout: 30 * time.Second})
	if err := setBaseURL(gh, baseURL); err != nil {
		return nil, err
	}
	return &Client{gh: gh}, nil
}

// setBaseURL points the client at a non-default API endpoint. go-github
// resolves endpoints relative to BaseURL, which must end in a slash.
func setBaseURL(gh *github.Client, baseURL string) error {
	if baseURL == "" {
		return nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parsing API base URL: %w", err)
	}
	gh.BaseURL = u
	return nil
}

// CurrentUser returns the login of the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("user lookup: %w", err)
	}
	if user.GetLogin() == "" {
		return "", fmt.Errorf("empty login in user response")
	}
	return user.GetLogin(), nil
}

// CreateRepo creates a public, non-initialized repository under the
// authenticated account. A repository that already exists is treated as
// success so the same task can be re-run.
func (c *Client) CreateRepo(ctx context.Context, name string) error {
	_, _, err := c.gh.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(name),
		Private:     github.Bool(false),
		AutoInit:    github.Bool(false),
		Description: github.String("LLM Code Deployment output"),
	})
	if err == nil {
		return nil
	}
	if isAlreadyExists(err) {
		return nil
	}
	return fmt.Errorf("create repo: %w", err)
}

// isAlreadyExists reports whether the creation error means the repository
// name is taken.
func isAlreadyExists(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) {
		return false
	}
	if strings.Contains(strings.ToLower(ghErr.Message), "exists") {
		return true
	}
	for _, e := range ghErr.Errors {
		if strings.Contains(strings.ToLower(e.Message), "exists") {
			return true
		}
	}
	return false
}

// PutFile creates or updates a single file on the given branch and returns
// the resulting commit SHA.
func (c *Client) PutFile(ctx context.Context, owner, repo, path, branch string, content []byte, message string) (string, error) {
	resp, _, err := c.gh.Repositories.CreateFile(ctx, owner, repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(branch),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	return resp.Commit.GetSHA(), nil
}

// PagesURL returns the published Pages URL for the repository, or empty if
// the site is not yet available. Non-200 statuses mean "not yet", not error.
func (c *Client) PagesURL(ctx context.Context, owner, repo string) (string, error) {
	pages, resp, err := c.gh.Repositories.GetPagesInfo(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusOK {
			return "", nil
		}
		return "", fmt.Errorf("pages lookup: %w", err)
	}
	return pages.GetHTMLURL(), nil
}

// WaitForPages polls the Pages status until a URL appears, the attempt budget
// is exhausted, or ctx is cancelled. Returns the URL and whether one was
// found. Transport errors and pending statuses both count as a failed attempt.
func (c *Client) WaitForPages(ctx context.Context, owner, repo string, attempts int, interval time.Duration) (string, bool) {
	for i := 0; i < attempts; i++ {
		url, err := c.PagesURL(ctx, owner, repo)
		if err == nil && url != "" {
			return url, true
		}

		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", false
		case <-timer.C:
		}
	}
	return "", false
}
