// Package github is a minimal GitHub API client for repository and webhook
// management.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// webhookEvents are the events every registered webhook subscribes to.
var webhookEvents = []string{"push", "pull_request"}

// Client is a GitHub API client authenticated with a personal access token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Hook is a repository webhook.
type Hook struct {
	ID     int64      `json:"id,omitempty"`
	Active bool       `json:"active"`
	Events []string   `json:"events"`
	Config HookConfig `json:"config"`
}

// HookConfig is the delivery configuration of a webhook. InsecureSSL is the
// API's string-typed flag; "0" keeps certificate verification on.
type HookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Secret      string `json:"secret,omitempty"`
	InsecureSSL string `json:"insecure_ssl"`
}

// StatusError is an API error with the HTTP status preserved so callers can
// classify it.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// NewClient creates a new GitHub API client for the given API endpoint,
// e.g. https://api.github.com.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// EnsureRepository creates the repository under the organization if it does
// not already exist. No further configuration is applied.
func (c *Client) EnsureRepository(ctx context.Context, org, name string) error {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s", org, name), nil)
	if err != nil {
		return err
	}
	err = c.do(req, nil)
	if err == nil {
		return nil
	}
	if !IsNotFound(err) {
		return fmt.Errorf("get repository %s/%s: %w", org, name, err)
	}

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return err
	}
	req, err = c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/orgs/%s/repos", org), bytes.NewReader(body))
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		if IsAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("create repository %s/%s: %w", org, name, err)
	}
	return nil
}

// EnsureWebhook registers a webhook delivering push and pull-request events
// to the given URL, signing payloads with the shared secret. Hooks are keyed
// by URL: an existing hook for the same URL is updated in place, so
// re-running never piles up duplicate registrations.
func (c *Client) EnsureWebhook(ctx context.Context, org, repo, url, secret string) error {
	hooks, err := c.listHooks(ctx, org, repo)
	if err != nil {
		return fmt.Errorf("list webhooks on %s/%s: %w", org, repo, err)
	}

	desired := Hook{
		Active: true,
		Events: webhookEvents,
		Config: HookConfig{
			URL:         url,
			ContentType: "json",
			Secret:      secret,
			InsecureSSL: "0",
		},
	}

	for _, hook := range hooks {
		if hook.Config.URL == url {
			if err := c.updateHook(ctx, org, repo, hook.ID, desired); err != nil {
				return fmt.Errorf("update webhook on %s/%s: %w", org, repo, err)
			}
			return nil
		}
	}

	if err := c.createHook(ctx, org, repo, desired); err != nil {
		return fmt.Errorf("create webhook on %s/%s: %w", org, repo, err)
	}
	return nil
}

// listHooks returns the repository's webhooks. GitHub caps hooks at 20 per
// repository, so a single page is always enough.
func (c *Client) listHooks(ctx context.Context, org, repo string) ([]Hook, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/hooks?per_page=100", org, repo), nil)
	if err != nil {
		return nil, err
	}

	var hooks []Hook
	if err := c.do(req, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

func (c *Client) createHook(ctx context.Context, org, repo string, hook Hook) error {
	body, err := json.Marshal(hook)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/hooks", org, repo), bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) updateHook(ctx context.Context, org, repo string, id int64, hook Hook) error {
	body, err := json.Marshal(hook)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, fmt.Sprintf("/repos/%s/%s/hooks/%d", org, repo, id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
		}
	}

	return nil
}

// IsAlreadyExists reports whether the error is the API's rejection of a
// duplicate create, which GitHub signals as 422.
func IsAlreadyExists(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	if statusErr.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	return strings.Contains(strings.ToLower(statusErr.Body), "already exists")
}

// IsAuthError reports whether the error is an authentication or
// authorization failure.
func IsAuthError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether the error is a missing-resource response.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusNotFound
}
