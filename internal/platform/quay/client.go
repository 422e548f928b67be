// Package quay is a minimal Quay API client for organization, robot account
// and repository management.
package quay

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

// Client is a Quay API client authenticated with an OAuth application token.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// Robot is a robot account with its issued credentials. Name carries the
// org+shortname form used as the docker login username.
type Robot struct {
	Name  string `json:"name"`
	Token string `json:"token"`
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

// NewClient creates a new Quay API client for the given API endpoint,
// e.g. https://quay.io.
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{},
	}
}

// EnsureOrganization creates the organization if absent. An existing
// organization is treated as success.
func (c *Client) EnsureOrganization(ctx context.Context, name, email string) error {
	body, err := json.Marshal(map[string]string{"name": name, "email": email})
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/organization/", bytes.NewReader(body))
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		if IsAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("create organization %s: %w", name, err)
	}
	return nil
}

// EnsureRobot returns the robot account with the given short name, creating
// it when absent. The issued token is returned in both cases: Quay keeps
// the token stable for the robot's lifetime.
func (c *Client) EnsureRobot(ctx context.Context, org, shortname string) (*Robot, error) {
	path := fmt.Sprintf("/api/v1/organization/%s/robots/%s", org, shortname)

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var robot Robot
	if err := c.do(req, &robot); err == nil {
		return &robot, nil
	} else if !IsNotFound(err) {
		// Only a missing robot warrants creation; anything else is a
		// failed lookup.
		return nil, fmt.Errorf("get robot %s: %w", shortname, err)
	}

	req, err = c.newRequest(ctx, http.MethodPut, path, strings.NewReader("{}"))
	if err != nil {
		return nil, err
	}
	if err := c.do(req, &robot); err != nil {
		return nil, fmt.Errorf("create robot %s: %w", shortname, err)
	}
	return &robot, nil
}

// EnsureRepository creates a repository under the organization if absent.
func (c *Client) EnsureRepository(ctx context.Context, org, name, description string) error {
	body, err := json.Marshal(map[string]string{
		"namespace":   org,
		"repository":  name,
		"visibility":  "public",
		"description": description,
	})
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/repository", bytes.NewReader(body))
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

// SetRepositoryWritePermission grants the robot account write access to the
// repository. robotName is the org+shortname form.
func (c *Client) SetRepositoryWritePermission(ctx context.Context, org, repo, robotName string) error {
	body, err := json.Marshal(map[string]string{"role": "write"})
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/api/v1/repository/%s/%s/permissions/user/%s", org, repo, robotName)
	req, err := c.newRequest(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("grant write on %s/%s to %s: %w", org, repo, robotName, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
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
// duplicate create. Quay signals this as 400 with an "already exists" or
// "Existing robot" message rather than 409.
func IsAlreadyExists(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	if statusErr.StatusCode != http.StatusBadRequest && statusErr.StatusCode != http.StatusConflict {
		return false
	}
	return strings.Contains(strings.ToLower(statusErr.Body), "exist")
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
// Quay reports a missing robot as 400 with a "Could not find" message
// rather than 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	if statusErr.StatusCode == http.StatusNotFound {
		return true
	}
	return statusErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(statusErr.Body), "could not find")
}
