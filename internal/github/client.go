// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/issuebridge/issuebridge/internal/config"
	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/pkg/models"
)

// ErrConfigNotFound is returned by FetchConfig when the repository has no
// sync configuration file.
var ErrConfigNotFound = errors.New("sync configuration file not found")

// Client encapsulates the GitHub API client. It satisfies the bridge's
// issue tracker interface.
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client from the provided
// configuration. It authenticates with a static token, supports GitHub
// Enterprise domains, and verifies the token with a test request.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "github.com"
	}

	var apiURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}

	logging.Info("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(cfg.Token))

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	if domain != "github.com" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}

		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	// Test the token
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		logging.Error("failed to test github token", "error", err)
		return nil, fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful",
		"username", user.GetLogin())

	return &Client{client: client}, nil
}

// FetchConfig reads the repository's sync configuration file at the given
// path. A repository without one yields ErrConfigNotFound.
func (c *Client) FetchConfig(ctx context.Context, owner, repo, path string) ([]byte, error) {
	fileContent, _, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to fetch %s from %s/%s: %w", path, owner, repo, err)
	}
	if fileContent == nil {
		// path resolved to a directory
		return nil, ErrConfigNotFound
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s from %s/%s: %w", path, owner, repo, err)
	}

	return []byte(content), nil
}

// GetIssue fetches the issue and converts it to the internal model. The
// fetched copy, not the webhook payload, is what gets synced.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (models.Issue, error) {
	issue, _, err := c.client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return models.Issue{}, fmt.Errorf("failed to get issue %s/%s#%d: %w", owner, repo, number, err)
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return models.Issue{
		Number:      issue.GetNumber(),
		Title:       issue.GetTitle(),
		Body:        issue.GetBody(),
		HTMLURL:     issue.GetHTMLURL(),
		AuthorLogin: issue.GetUser().GetLogin(),
		Labels:      labels,
	}, nil
}

// PostIssueComment posts a comment on the issue. This is the only write
// the bridge ever performs against the issue tracker.
func (c *Client) PostIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to comment on issue %s/%s#%d: %w", owner, repo, number, err)
	}

	logging.Debug("posted issue comment", "owner", owner, "repo", repo, "issue_number", number)
	return nil
}
