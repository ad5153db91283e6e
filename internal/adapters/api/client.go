// Package api implements the HTTP client for the activities service.
// RosterView talks to the service exclusively through this client.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ActivityDetails mirrors the wire shape of one activity in the list payload.
type ActivityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// StatusError is a non-2xx response from the service. Detail carries the
// server's explanation and may be empty.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("activities service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("activities service returned status %d: %s", e.StatusCode, e.Detail)
}

// Client calls the activities service endpoints.
//
// Requests carry no client-side timeout: the only timer in the signup flow
// is the message auto-hide, which is unrelated to the network. Callers
// bound waits through ctx when they need to.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a Client for the service at baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a ready-to-use client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
	}
}

// List fetches the full activity collection, bypassing intermediate caches.
// PRE: ctx is valid
// POST: Returns the name-to-details mapping, or an error on transport
// failure, non-2xx status, or a malformed body
func (c *Client) List(ctx context.Context) (map[string]ActivityDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/activities", nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp)
	}

	var activities map[string]ActivityDetails
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}

// SignUp registers email for the named activity.
// PRE: activityName and email are non-empty
// POST: Returns the server's success message, a *StatusError on rejection,
// or the transport error
func (c *Client) SignUp(ctx context.Context, activityName, email string) (string, error) {
	return c.mutate(ctx, http.MethodPost, activityName, "signup", email)
}

// Unregister removes email from the named activity.
// PRE: activityName and email are non-empty
// POST: Returns the server's success message, a *StatusError on rejection,
// or the transport error
func (c *Client) Unregister(ctx context.Context, activityName, email string) (string, error) {
	return c.mutate(ctx, http.MethodDelete, activityName, "unregister", email)
}

// mutate issues a roster mutation. Path segments and query values are
// percent-encoded.
func (c *Client) mutate(ctx context.Context, method, activityName, action, email string) (string, error) {
	q := url.Values{}
	q.Set("email", email)
	endpoint := fmt.Sprintf("%s/activities/%s/%s?%s",
		c.baseURL, url.PathEscape(activityName), action, q.Encode())

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", action, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.statusError(resp)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode %s response: %w", action, err)
	}
	return body.Message, nil
}

// statusError builds a StatusError from a non-2xx response. The detail
// field is optional; an unreadable body yields an empty detail.
func (c *Client) statusError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &StatusError{StatusCode: resp.StatusCode, Detail: body.Detail}
}
