// Package client is an HTTP client for the lab policy management API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crucial707/dtl-policy/internal/models"
	"github.com/crucial707/dtl-policy/internal/policy"
)

// Client talks to the management API. It implements policy.Store.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ policy.Store = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func schedulePath(key policy.Key) string {
	return "/resourceGroups/" + url.PathEscape(key.ResourceGroup) +
		"/labs/" + url.PathEscape(key.LabName) +
		"/schedules/" + url.PathEscape(key.PolicyName)
}

// GetResource fetches a policy. A missing policy yields a *models.RemoteError
// matching models.ErrNotFound.
func (c *Client) GetResource(ctx context.Context, key policy.Key) (*models.SchedulePolicy, error) {
	resp, err := c.request(ctx, http.MethodGet, schedulePath(key), nil)
	if err != nil {
		return nil, err
	}
	var p models.SchedulePolicy
	if err := parseResponse(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateOrUpdateResource writes p at key and returns the stored object.
func (c *Client) CreateOrUpdateResource(ctx context.Context, key policy.Key, p *models.SchedulePolicy) (*models.SchedulePolicy, error) {
	resp, err := c.request(ctx, http.MethodPut, schedulePath(key), p)
	if err != nil {
		return nil, err
	}
	var out models.SchedulePolicy
	if err := parseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TokenResponse is returned by IssueToken.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken exchanges an API token for a signed JWT.
func (c *Client) IssueToken(ctx context.Context, apiToken string) (*TokenResponse, error) {
	resp, err := c.request(ctx, http.MethodPost, "/auth/token", map[string]string{"api_token": apiToken})
	if err != nil {
		return nil, err
	}
	var out TokenResponse
	if err := parseResponse(resp, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("token endpoint returned no token")
	}
	return &out, nil
}

func (c *Client) request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

// parseResponse decodes a 2xx body into target, or turns the response into a
// *models.RemoteError.
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return models.NewRemoteError(resp.StatusCode, msg)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
