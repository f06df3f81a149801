// Package api is the transport adapter for the messaging REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Client is a thin HTTP client for the messaging JSON API. It sends bearer
// authentication when a token is set, tags every request with a fresh
// X-Request-Id and decodes failure payloads into *Error.
//
// The client enforces no timeout and never retries. Requests are bounded
// only by the caller's context; the poll loops re-fetch on their own
// schedule.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL, for example
// https://lms.example.com/messaging/api. An empty token sends no
// Authorization header.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs an HTTP GET with query parameters and unmarshals the JSON
// response into result.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	if len(query) > 0 {
		path += "?" + encodeQuery(query)
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST with a JSON body and unmarshals the JSON
// response into result.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do builds the request, sends it and decodes either the success body or
// the error payload.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-Id", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Printf("api: %s %s (request %s)", method, path, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("api: %s %s (request %s) failed: %v", method, path, requestID, err)
		return &Error{
			Type:    TypeDanger,
			Message: fmt.Sprintf("could not reach the server: %v", err),
			cause:   err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Type:    TypeDanger,
			Message: fmt.Sprintf("reading response body: %v", err),
			cause:   err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, respBody)
		log.Printf(
			"api: %s %s (request %s) returned %d: %s",
			method, path, requestID, resp.StatusCode, apiErr.Message,
		)
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Type:    TypeDanger,
			Message: fmt.Sprintf("unmarshaling response from %s %s: %v", method, path, err),
			cause:   err,
		}
	}

	return nil
}

// encodeQuery encodes query like url.Values.Encode, but writes parameters
// with an empty value as bare flags ("&thread" rather than "&thread=").
func encodeQuery(query url.Values) string {
	encoded := query.Encode()
	parts := strings.Split(encoded, "&")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "=")
	}
	return strings.Join(parts, "&")
}
