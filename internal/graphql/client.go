// Package graphql is a minimal client for a single GraphQL endpoint.
// It is intentionally light—raw status codes and raw error payloads are
// surfaced untouched so the executor can normalize them itself.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTimeout marks a call that hit its deadline before the server answered.
// The repair prompt distinguishes "the server never responded" from "the
// server rejected the query", so this must stay a separate error class.
var ErrTimeout = errors.New("graphql: request timed out")

// Response is the standard GraphQL response envelope. Errors are kept as raw
// JSON so no diagnostic detail is lost before it reaches the repair prompt.
type Response struct {
	Data   json.RawMessage   `json:"data"`
	Errors []json.RawMessage `json:"errors"`
}

// Client posts queries to one configured endpoint.
type Client struct {
	http     *http.Client
	endpoint string
	token    string
}

// NewClient returns a ready-to-use client. token may be an empty string for
// unauthenticated endpoints. timeout bounds every individual call.
func NewClient(endpoint, token string, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		token:    token,
	}
}

// request is the wire shape of a GraphQL POST body. Variables are omitted
// entirely when nil, matching what most servers expect.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Execute posts query+variables and decodes the response envelope.
// The returned error covers transport problems only (unreachable endpoint,
// timeout, non-2xx status, malformed body); GraphQL-level errors come back
// inside Response.Errors with a nil error.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("graphql: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("graphql: build request: %w", err)
	}
	c.addHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w after waiting for %s", ErrTimeout, c.endpoint)
		}
		return nil, fmt.Errorf("graphql: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a little of the body for diagnostics; servers often explain
		// 4xx responses in plain text.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("graphql: unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("graphql: decode response: %w", err)
	}
	return &out, nil
}

// addHeaders sets content-type and authentication headers.
func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "graphsage-api")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
